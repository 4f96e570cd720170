package model

type Features struct {
	UnderscoreToCamel     bool `yaml:"underscore_to_camel" json:"underscore_to_camel"`
	TemplateSubstitution  bool `yaml:"template_substitution" json:"template_substitution"`
	CheckSingleRowUpdates bool `yaml:"check_single_row_updates" json:"check_single_row_updates"`
	BatchInserts          bool `yaml:"batch_inserts" json:"batch_inserts"`
	IterableExtensions    bool `yaml:"iterable_extensions" json:"iterable_extensions"`
	CloseableIterables    bool `yaml:"closeable_iterables" json:"closeable_iterables"`
	ColumnInterfaces      bool `yaml:"column_interfaces" json:"column_interfaces"`
}

const (
	FeatureUnderscoreToCamel     = "underscore_to_camel"
	FeatureTemplateSubstitution  = "template_substitution"
	FeatureCheckSingleRowUpdates = "check_single_row_updates"
	FeatureBatchInserts          = "batch_inserts"
	FeatureIterableExtensions    = "iterable_extensions"
	FeatureCloseableIterables    = "closeable_iterables"
	FeatureColumnInterfaces      = "column_interfaces"
)

func DefaultFeatures() Features {
	return Features{UnderscoreToCamel: true}
}

type featureFlag struct {
	name string
	on   bool
}

func (f Features) flags() []featureFlag {
	return []featureFlag{
		{FeatureUnderscoreToCamel, f.UnderscoreToCamel},
		{FeatureTemplateSubstitution, f.TemplateSubstitution},
		{FeatureCheckSingleRowUpdates, f.CheckSingleRowUpdates},
		{FeatureBatchInserts, f.BatchInserts},
		{FeatureIterableExtensions, f.IterableExtensions},
		{FeatureCloseableIterables, f.CloseableIterables},
		{FeatureColumnInterfaces, f.ColumnInterfaces},
	}
}

// Names lists the enabled features in declaration order.
func (f Features) Names() []string {
	var names []string
	for _, flag := range f.flags() {
		if flag.on {
			names = append(names, flag.name)
		}
	}
	return names
}

func (f Features) Enabled(name string) bool {
	for _, flag := range f.flags() {
		if flag.name == name {
			return flag.on
		}
	}
	return false
}

// AllFeatures lists every known feature name.
func AllFeatures() []string {
	var names []string
	for _, flag := range (Features{}).flags() {
		names = append(names, flag.name)
	}
	return names
}

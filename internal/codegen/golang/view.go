package golang

import (
	"fmt"
	"go/token"
	"path"
	"sort"
	"strings"

	"github.com/terminally-online/querygen/internal/model"
)

type fileView struct {
	Package string
	Source  string
	// Helpers is set when the file carries the declarations shared by
	// every generated file of the package. TypeName is empty for a file
	// holding nothing else.
	Helpers      bool
	TypeName     string
	Constructor  string
	Imports      []string
	Features     model.Features
	Constraint   string
	HasTemplates bool
	HasCursors   bool
	Selects      []queryView
	Updates      []queryView
}

type queryView struct {
	Name       string
	Method     string
	Const      string
	SQL        string
	IsTemplate bool
	ParamsType string
	RowType    string
	RowsMethod string
	EachMethod string
	ScanFunc   string
	Fields     []fieldView
	Columns    []fieldView

	// Signature, CallArgs and ArgList are pre-joined fragments, each
	// starting with ", " when not empty.
	Signature string
	CallArgs  string
	ArgList   string
}

type fieldView struct {
	Name  string
	Field string
	Type  string
}

func buildView(root *model.RootModel, helpers bool) (*fileView, error) {
	n := newNamer()

	pkg, err := validPackage(root.PackageName)
	if err != nil {
		return nil, err
	}

	view := &fileView{
		Package:    pkg,
		Source:     path.Base(strings.ReplaceAll(root.SourceFileName, "\\", "/")),
		Helpers:    helpers,
		Features:   root.Features,
		Constraint: root.TemplateValueConstraint,
		HasCursors: root.Features.CloseableIterables,
	}
	if root.IsPublic() {
		view.TypeName = n.exported(root.ClassName)
		view.Constructor = "New" + view.TypeName
	} else {
		view.TypeName = n.unexported(root.ClassName)
		view.Constructor = "new" + n.exported(root.ClassName)
	}

	imports := map[string]bool{"context": true}

	for _, q := range root.Selects {
		qv, err := buildQuery(n, q, root.Features, imports)
		if err != nil {
			return nil, err
		}
		view.Selects = append(view.Selects, qv)
	}
	for _, q := range root.Updates {
		qv, err := buildQuery(n, q, root.Features, imports)
		if err != nil {
			return nil, err
		}
		view.Updates = append(view.Updates, qv)
	}

	view.HasTemplates = hasTemplates(root)
	if view.HasTemplates && view.Constraint == "" {
		view.Constraint = model.DefaultTemplateValueConstraint
	}

	if len(view.Selects) > 0 {
		imports["database/sql"] = true
	}
	for _, q := range view.Updates {
		if root.Features.BatchInserts && q.ParamsType != "" {
			imports["database/sql"] = true
		}
	}
	if root.Features.CheckSingleRowUpdates && len(view.Updates) > 0 {
		imports["fmt"] = true
	}
	if helpers {
		helperImports(view, imports)
	}

	view.Imports = sortedImports(imports)
	return view, nil
}

// buildSharedView describes a file holding only the helper declarations
// needed by the files rendered from roots.
func buildSharedView(roots []*model.RootModel) (*fileView, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no query files to share helpers between")
	}

	pkg, err := validPackage(roots[0].PackageName)
	if err != nil {
		return nil, err
	}

	view := &fileView{
		Package:  pkg,
		Helpers:  true,
		Features: roots[0].Features,
	}
	for _, root := range roots {
		if p := packageName(root.PackageName); p != pkg {
			return nil, fmt.Errorf("package %s and %s cannot share helpers", pkg, p)
		}
		if root.Features.CloseableIterables {
			view.HasCursors = true
		}
		if hasTemplates(root) {
			view.HasTemplates = true
			if view.Constraint == "" {
				view.Constraint = root.TemplateValueConstraint
			}
		}
	}
	if view.HasTemplates && view.Constraint == "" {
		view.Constraint = model.DefaultTemplateValueConstraint
	}

	imports := make(map[string]bool)
	helperImports(view, imports)
	view.Imports = sortedImports(imports)
	return view, nil
}

func helperImports(view *fileView, imports map[string]bool) {
	imports["context"] = true
	imports["database/sql"] = true
	if view.HasTemplates {
		imports["fmt"] = true
		imports["regexp"] = true
	}
}

func hasTemplates(root *model.RootModel) bool {
	for _, q := range root.All() {
		if q.IsTemplate {
			return true
		}
	}
	return false
}

func sortedImports(imports map[string]bool) []string {
	out := make([]string, 0, len(imports))
	for imp := range imports {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

func validPackage(p string) (string, error) {
	pkg := packageName(p)
	if !token.IsIdentifier(pkg) {
		return "", fmt.Errorf("invalid Go package name %q", pkg)
	}
	return pkg, nil
}

func buildQuery(n *namer, q model.QueryModel, features model.Features, imports map[string]bool) (queryView, error) {
	method := n.exported(q.Name)
	qv := queryView{
		Name:       q.Name,
		Method:     method,
		Const:      n.unexported(q.Name) + "SQL",
		SQL:        q.PositionalSQL,
		IsTemplate: q.IsTemplate,
	}
	if qv.SQL == "" {
		qv.SQL = q.SQL
	}

	qv.Fields = fields(n, q.Params, imports)
	qv.Columns = fields(n, q.Columns, imports)

	fieldByName := make(map[string]string, len(qv.Fields))
	for _, f := range qv.Fields {
		fieldByName[f.Name] = f.Field
	}

	var sig, call, args strings.Builder
	if len(qv.Fields) > 0 {
		qv.ParamsType = method + "Params"
		sig.WriteString(", params " + qv.ParamsType)
		call.WriteString(", params")
	}
	if qv.IsTemplate {
		sig.WriteString(", values map[string]string")
		call.WriteString(", values")
	}
	for _, arg := range q.Args {
		field, ok := fieldByName[arg]
		if !ok {
			return queryView{}, fmt.Errorf("query %s: argument %q has no matching parameter", q.Name, arg)
		}
		args.WriteString(", params." + field)
	}
	qv.Signature = sig.String()
	qv.CallArgs = call.String()
	qv.ArgList = args.String()

	if q.IsSelect() {
		if len(qv.Columns) > 0 {
			qv.RowType = method + "Row"
			qv.RowsMethod = n.unexported(q.Name) + "Rows"
			qv.EachMethod = n.unexported(q.Name) + "Each"
			if features.IterableExtensions {
				qv.EachMethod = method + "Each"
			}
			qv.ScanFunc = "scan" + qv.RowType
		} else {
			qv.RowsMethod = method
		}
	}

	return qv, nil
}

// fields names the struct fields for specs. Specs are unique by name, but two
// names can still map to one Go identifier, so later ones get a suffix.
func fields(n *namer, specs []model.ParamSpec, imports map[string]bool) []fieldView {
	out := make([]fieldView, 0, len(specs))
	used := make(map[string]int, len(specs))
	for _, spec := range specs {
		field := n.exported(spec.Name)
		if c := used[field]; c > 0 {
			used[field] = c + 1
			field = fmt.Sprintf("%s%d", field, c+1)
		} else {
			used[field] = 1
		}

		if imp := spec.Type.Import(); imp != "" {
			imports[imp] = true
		}
		out = append(out, fieldView{Name: spec.Name, Field: field, Type: spec.Type.GoType()})
	}
	return out
}

// packageName takes the last element of a dotted or slashed package path.
func packageName(p string) string {
	p = strings.ReplaceAll(p, "/", ".")
	if i := strings.LastIndex(p, "."); i >= 0 {
		p = p[i+1:]
	}
	return p
}

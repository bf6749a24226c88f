// Package nodefaultclient запрещает исходящие запросы через http.DefaultClient
// и функции-обёртки http.Get, http.Head, http.Post, http.PostForm. Такие запросы идут
// мимо таймаутов, лимитера и проверки адресов; используйте resty-клиент загрузчика или верификатора.
package nodefaultclient

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "nodefaultclient",
	Doc:      "запрещает http.DefaultClient и http.Get/Head/Post/PostForm вне тестов",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var forbidden = map[string]bool{
	"Get":           true,
	"Head":          true,
	"Post":          true,
	"PostForm":      true,
	"DefaultClient": true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.SelectorExpr)(nil)}, func(n ast.Node) {
		sel := n.(*ast.SelectorExpr)
		if strings.HasSuffix(pass.Fset.Position(sel.Pos()).Filename, "_test.go") {
			return
		}
		obj := pass.TypesInfo.Uses[sel.Sel]
		if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "net/http" || !forbidden[obj.Name()] {
			return
		}
		switch obj.(type) {
		case *types.Func, *types.Var:
			if obj.Parent() != obj.Pkg().Scope() {
				return
			}
			pass.Reportf(sel.Pos(), "http.%s обходит настроенный клиент, используйте resty", obj.Name())
		}
	})
	return nil, nil
}

// Package noosexit запрещает завершать процесс из функции main пакета main:
// os.Exit и log.Fatal* пропускают отложенные вызовы (закрытие хранилища, logger.Sync).
package noosexit

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "noosexit",
	Doc:      "запрещает прямое использование os.Exit и log.Fatal в функции main пакета main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var exitFuncs = map[string]func(name string) bool{
	"os":  func(name string) bool { return name == "Exit" },
	"log": func(name string) bool { return strings.HasPrefix(name, "Fatal") },
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
			return
		}
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			obj, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
			if !ok || obj.Pkg() == nil {
				return true
			}
			if forbidden, ok := exitFuncs[obj.Pkg().Path()]; ok && forbidden(obj.Name()) {
				pass.Reportf(call.Pos(), "использование %s.%s в main запрещено, верните ошибку из run", obj.Pkg().Name(), obj.Name())
			}
			return true
		})
	})
	return nil, nil
}

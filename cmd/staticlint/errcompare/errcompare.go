// Package errcompare содержит анализатор, запрещающий сравнивать ошибки
// с sentinel-переменными Err* через == и !=.
package errcompare

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "errcompare",
	Doc:      "reports ==/!= comparisons with package-level Err* sentinels; use errors.Is",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var errorIface = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.BinaryExpr)(nil)}, func(n ast.Node) {
		bin := n.(*ast.BinaryExpr)
		if bin.Op != token.EQL && bin.Op != token.NEQ {
			return
		}
		for _, operand := range []ast.Expr{bin.X, bin.Y} {
			if v := sentinel(pass.TypesInfo, operand); v != nil {
				pass.Reportf(bin.Pos(), "comparison with %s: use errors.Is, the error may be wrapped", v.Name())
				return
			}
		}
	})
	return nil, nil
}

// sentinel возвращает переменную уровня пакета вида ErrXxx типа error или nil.
func sentinel(info *types.Info, e ast.Expr) *types.Var {
	var id *ast.Ident
	switch e := e.(type) {
	case *ast.Ident:
		id = e
	case *ast.SelectorExpr:
		id = e.Sel
	default:
		return nil
	}

	v, ok := info.Uses[id].(*types.Var)
	if !ok || v.Pkg() == nil || !strings.HasPrefix(v.Name(), "Err") {
		return nil
	}
	if v.Pkg().Scope().Lookup(v.Name()) != v {
		return nil
	}
	if !types.Implements(v.Type(), errorIface) {
		return nil
	}
	return v
}

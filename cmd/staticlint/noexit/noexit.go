// Package noexit содержит анализатор, который запрещает прямой вызов os.Exit
// в функции main пакета main.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/types/typeutil"
)

// Analyzer запрещает os.Exit в функции main.
var Analyzer = &analysis.Analyzer{
	Name: "noexit",
	Doc:  "forbids direct os.Exit calls in func main of package main",
	Run:  run,
}

// NewAnalyzer возвращает анализатор noexit.
func NewAnalyzer() *analysis.Analyzer {
	return Analyzer
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
				continue
			}

			ast.Inspect(fn.Body, func(n ast.Node) bool {
				// Замыкания внутри main вызываются не обязательно из main
				if _, ok := n.(*ast.FuncLit); ok {
					return false
				}
				call, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				if isOSExit(typeutil.StaticCallee(pass.TypesInfo, call)) {
					pass.Reportf(call.Pos(), "direct os.Exit call in main function")
				}
				return true
			})
		}
	}
	return nil, nil
}

func isOSExit(fn *types.Func) bool {
	return fn != nil && fn.Pkg() != nil && fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}

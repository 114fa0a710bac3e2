// Package main запускает multichecker для проверки кода сервиса.
//
// Он включает:
//   - стандартные анализаторы go/analysis/passes
//   - все SA-анализаторы staticcheck
//   - S1000 из simple и U1000 (unused)
//   - публичный анализатор bodyclose
//   - собственные анализаторы noexit (запрещает os.Exit в main)
//     и errcompare (запрещает сравнивать ошибки через ==)
//
// Запуск:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/fieldalignment"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/unused"

	"github.com/Totarae/shortr/cmd/staticlint/errcompare"
	"github.com/Totarae/shortr/cmd/staticlint/noexit"
)

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		fieldalignment.Analyzer,
		printf.Analyzer,
		errorsas.Analyzer,
		lostcancel.Analyzer,
	}

	// SA-анализаторы
	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			list = append(list, a.Analyzer)
		}
	}

	// не-SA:
	if a := findAnalyzer(simple.Analyzers, "S1000"); a != nil {
		list = append(list, a) // упрощения select
	}
	list = append(list, unused.Analyzer.Analyzer) // U1000

	// публичный анализатор (не из staticcheck)
	list = append(list, bodyclose.Analyzer)

	// собственные анализаторы
	list = append(list, noexit.NewAnalyzer(), errcompare.Analyzer)

	return list
}

func findAnalyzer(set []*lint.Analyzer, name string) *analysis.Analyzer {
	for _, a := range set {
		if a.Analyzer.Name == name {
			return a.Analyzer
		}
	}
	return nil
}

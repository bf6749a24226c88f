/*
Package staticlint запускает multichecker проекта redirectmap.

1. Стандартные анализаторы golang.org/x/tools:
  - printf, structtag, errorsas, sortslice, httpresponse, lostcancel, shadow, unusedresult

2. Анализаторы Staticcheck (https://staticcheck.io):
  - все SA-анализаторы (вероятные ошибки)
  - S1000 и S1005 из класса simple, ST1005 из stylecheck (текст ошибок)

3. Сторонние анализаторы:
  - asciicheck: запрещает не-ASCII символы в идентификаторах

4. Собственные анализаторы:
  - noosexit: запрещает os.Exit и log.Fatal в функции main пакета main
  - nodefaultclient: запрещает http.DefaultClient и http.Get/Head/Post вне тестов,
    все исходящие запросы идут через resty-клиенты загрузчика и верификатора

Запуск:

	go run ./cmd/staticlint ./...
*/
package main

import (
	"github.com/issafronov/redirectmap/cmd/staticlint/nodefaultclient"
	"github.com/issafronov/redirectmap/cmd/staticlint/noosexit"
	"github.com/tdakkota/asciicheck"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"

	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/sortslice"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"

	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"strings"
)

// extraChecks выбранные проверки вне класса SA
var extraChecks = map[string]bool{
	"S1000":  true,
	"S1005":  true,
	"ST1005": true,
}

func main() {
	analyzers := []*analysis.Analyzer{
		printf.Analyzer,
		structtag.Analyzer,
		errorsas.Analyzer,
		sortslice.Analyzer,
		httpresponse.Analyzer,
		lostcancel.Analyzer,
		shadow.Analyzer,
		unusedresult.Analyzer,
	}
	seen := make(map[string]bool, len(analyzers))
	for _, a := range analyzers {
		seen[a.Name] = true
	}

	add := func(a *analysis.Analyzer) {
		if !seen[a.Name] {
			analyzers = append(analyzers, a)
			seen[a.Name] = true
		}
	}

	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			add(a.Analyzer)
		}
	}
	for _, group := range [][]*lint.Analyzer{simple.Analyzers, stylecheck.Analyzers} {
		for _, a := range group {
			if extraChecks[a.Analyzer.Name] {
				add(a.Analyzer)
			}
		}
	}

	add(asciicheck.NewAnalyzer())
	add(noosexit.Analyzer)
	add(nodefaultclient.Analyzer)

	multichecker.Main(analyzers...)
}

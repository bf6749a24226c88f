// Package export рендерит сохранённый отчёт в CSV: сначала пары, затем префиксные правила.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/issafronov/redirectmap/internal/app/models"
)

// ContentType MIME-тип результата WriteCSV
const ContentType = "text/csv; charset=utf-8"

var (
	pairHeader = []string{"from", "to", "confidence", "note", "method", "verify_status", "verify_ok"}
	ruleHeader = []string{"from_prefix", "to_prefix", "support"}
)

// WriteCSV записывает пары отчёта и, если они есть, правила после пустой строки
func WriteCSV(w io.Writer, result *models.MappingResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pairHeader); err != nil {
		return err
	}
	for _, p := range result.Pairs {
		if err := cw.Write(pairRecord(p)); err != nil {
			return err
		}
	}

	if len(result.Rules) > 0 {
		if err := cw.Write(nil); err != nil {
			return err
		}
		if err := cw.Write(ruleHeader); err != nil {
			return err
		}
		for _, r := range result.Rules {
			if err := cw.Write([]string{r.FromPrefix, r.ToPrefix, strconv.Itoa(r.Support)}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func pairRecord(p models.MappingPair) []string {
	status, ok := "", ""
	if p.VerifyStatus != nil {
		status = strconv.Itoa(*p.VerifyStatus)
	}
	if p.VerifyOk != nil {
		ok = strconv.FormatBool(*p.VerifyOk)
	}
	return []string{
		p.From,
		p.To,
		strconv.FormatFloat(p.Confidence, 'f', 2, 64),
		string(p.Note),
		p.Method,
		status,
		ok,
	}
}

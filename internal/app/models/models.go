package models

// Note описывает уровень сходства, по которому была предложена пара,
// и дополнительные отметки верификации (через ";").
type Note string

const (
	NoteSlugExact     Note = "slug_exact"
	NoteSlugSimilar   Note = "slug_similar"
	NotePathSimilar   Note = "path_similar"
	NoteLowSimilarity Note = "low_similarity"
)

// MethodPermanent код редиректа, предлагаемый для каждой пары
const MethodPermanent = "301"

// MappingRequest представляет входную структуру для построения карты редиректов.
// Каждая сторона задаётся либо источником sitemap (URL или XML), либо списком URL.
type MappingRequest struct {
	OldSitemap        string   `json:"oldSitemap" validate:"required_without=OldURLs"`
	NewSitemap        string   `json:"newSitemap" validate:"required_without=NewURLs"`
	OldURLs           []string `json:"oldUrls" validate:"required_without=OldSitemap"`
	NewURLs           []string `json:"newUrls" validate:"required_without=NewSitemap"`
	Timeout           int      `json:"timeout" validate:"omitempty,min=0"`
	MaxCompare        int      `json:"maxCompare" validate:"omitempty,min=0"`
	VerifyTargets     *bool    `json:"verifyTargets"`
	SameRegDomainOnly *bool    `json:"sameRegDomainOnly"`
	Concurrency       int      `json:"concurrency" validate:"omitempty,min=0"`
}

// MappingPair предложенный редирект со старого URL на новый
type MappingPair struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Confidence   float64 `json:"confidence"`
	Note         Note    `json:"note"`
	Method       string  `json:"method"`
	VerifyStatus *int    `json:"verifyStatus,omitempty"`
	VerifyOk     *bool   `json:"verifyOk,omitempty"`
}

// PrefixRule обобщённое правило переписывания по первому сегменту пути
type PrefixRule struct {
	FromPrefix string `json:"fromPrefix"`
	ToPrefix   string `json:"toPrefix"`
	Support    int    `json:"support"`
}

// RunMeta содержит счётчики и эхо конфигурации запуска
type RunMeta struct {
	RunTimestamp      string `json:"runTimestamp"`
	RemovedCount      int    `json:"removedCount"`
	AddedCount        int    `json:"addedCount"`
	SuggestedMappings int    `json:"suggestedMappings"`
	Truncated         bool   `json:"truncated"`
	Verify            bool   `json:"verify"`
	TimeoutMs         int    `json:"timeoutMs"`
	SameRegDomainOnly bool   `json:"sameRegDomainOnly"`
}

// MappingResult — результат одного запуска движка
type MappingResult struct {
	ID       string        `json:"id,omitempty"`
	Meta     RunMeta       `json:"meta"`
	Added    []string      `json:"added"`
	Removed  []string      `json:"removed"`
	Pairs    []MappingPair `json:"pairs"`
	Unmapped []string      `json:"unmapped"`
	Rules    []PrefixRule  `json:"rules"`
	Error    string        `json:"error,omitempty"`
}

// EmptyResult возвращает результат, в котором присутствуют все поля верхнего уровня.
// Используется при ошибках, чтобы клиентам не приходилось проверять поля на null.
func EmptyResult(meta RunMeta) *MappingResult {
	return &MappingResult{
		Meta:     meta,
		Added:    []string{},
		Removed:  []string{},
		Pairs:    []MappingPair{},
		Unmapped: []string{},
		Rules:    []PrefixRule{},
	}
}

// RunSummary используется при получении списка запусков пользователя
type RunSummary struct {
	ID                string `json:"id"`
	RunTimestamp      string `json:"runTimestamp"`
	RemovedCount      int    `json:"removedCount"`
	AddedCount        int    `json:"addedCount"`
	SuggestedMappings int    `json:"suggestedMappings"`
}

type StatsResponse struct {
	Runs  int64 `json:"runs"`
	Users int64 `json:"users"`
}

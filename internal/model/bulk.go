package model

// LinkRequest представляет одну пару alias/url во входящем запросе.
type LinkRequest struct {
	Alias string `json:"alias"`
	URL   string `json:"url"`
}

// UpdateRequest тело запроса на замену целевого URL.
type UpdateRequest struct {
	URL string `json:"url"`
}

// BulkRequest представляет пакетный запрос на создание алиасов.
type BulkRequest struct {
	Links []LinkRequest `json:"links"`
}

// BulkError описывает неудачный элемент пакета.
type BulkError struct {
	Alias string `json:"alias"`
	Error string `json:"error"`
	// Err исходная ошибка, для errors.Is на стороне вызывающего
	Err error `json:"-"`
}

// BulkSummary итоговые счётчики пакета.
type BulkSummary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// BulkResult результат пакетного создания: каждый элемент обрабатывается независимо.
type BulkResult struct {
	Created []*ShortLink `json:"created"`
	Errors  []BulkError  `json:"errors"`
	Summary BulkSummary  `json:"summary"`
}

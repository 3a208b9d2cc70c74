package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Значения пагинации по умолчанию: отсутствующие или некорректные параметры
// запроса приводятся к ним на уровне обработчиков, а не хранилища.
const (
	defaultPage    = 1
	defaultPerPage = 10
)

// messageResponse — типовой ответ с текстовым сообщением.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse — типовой ответ с ошибкой; текст внутренних ошибок наружу не попадает.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON сериализует v в тело ответа с указанным статусом.
func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeValidationErrors превращает ошибки validator в ответ 400 с пофилдовыми
// сообщениями вида {"email": "invalid value for rule 'email'"}.
func writeValidationErrors(log *slog.Logger, w http.ResponseWriter, err error) {
	fields := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = "invalid value for rule '" + fe.Tag() + "'"
		}
	} else {
		fields["body"] = "invalid request body"
	}
	writeJSON(log, w, http.StatusBadRequest, fields)
}

// pageParams извлекает page и per_page из query-параметров.
// Отсутствующие, нечисловые и неположительные значения заменяются дефолтами.
func pageParams(r *http.Request) (page, perPage int) {
	page = defaultPage
	perPage = defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
	}
	return page, perPage
}

// idParam парсит числовой URL-параметр.
func idParam(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

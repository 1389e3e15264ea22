// Package form разбирает поля HTML-форм, общие для страниц ресурсов.
package form

import (
	"encoding/json"
	"fmt"
)

// ParseIDs разбирает поле ids формы массового удаления.
// Ошибка только для невалидного JSON (в том числе пустого поля) и для массива
// с нестроковыми элементами. Любой другой JSON, кроме массива, даёт пустой список.
func ParseIDs(raw string) ([]string, error) {
	const op = "form.ParseIDs"

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, nil
	}

	ids := make([]string, 0, len(items))
	for i, item := range items {
		id, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s: element %d is not a string", op, i)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

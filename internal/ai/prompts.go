package ai

import (
	"fmt"
	"time"
)

// buildExtractPrompt pins today's date so relative dates resolve the same
// way the heuristic date parser resolves them.
func buildExtractPrompt(now time.Time) string {
	return fmt.Sprintf(`Ты извлекаешь параметры бронирования загородного дома "The Secret House" из текста на русском или английском.
Текущая дата: %s (текущий год: %d).

Форматы:
- Дата: ДД.ММ.ГГГГ (если год не указан, подставь %d; если дата уже прошла, следующий год)
- Время: HH:MM (24 часа, ведущие нули обязательны)
- tariff: только "12 часов", "Суточно для пар", "Суточно от 3-х человек", "Инкогнито 12 часов", "Инкогнито на сутки", "Рабочий", "Абонемент"
- Да/нет: true/false
- number_guests: целое число
Если значения нет в тексте, верни null. Ничего не придумывай.

Верни только JSON:
{
  "tariff": "string" | null,
  "start_date": "ДД.ММ.ГГГГ" | null,
  "start_time": "HH:MM" | null,
  "finish_date": "ДД.ММ.ГГГГ" | null,
  "finish_time": "HH:MM" | null,
  "first_bedroom": boolean | null,
  "second_bedroom": boolean | null,
  "sauna": boolean | null,
  "photoshoot": boolean | null,
  "secret_room": boolean | null,
  "number_guests": integer | null,
  "contact": "string" | null,
  "comment": "string" | null
}`, now.Format("02.01.2006"), now.Year(), now.Year())
}

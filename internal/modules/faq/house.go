package faq

import (
	"fmt"
	"strings"

	"secrethouse/internal/modules/pricing"
)

const houseInfo = `О ДОМЕ
The Secret House — загородный дом в 12 км от Минска в сторону Ратомки, в лесу.
Комнаты: зелёная спальня, белая спальня, кухня-гостиная, сауна, две ванные комнаты, секретная комната, зона барбекю во дворе.
Удобства: дизайнерский интерьер, гостевой набор (полотенца, халаты, тапочки, средства гигиены), уборка после каждого гостя, самостоятельный заезд по инструкции.

ПРАВИЛА
• Заключается договор аренды (кроме тарифа «Инкогнито»).
• Для брони нужна предоплата 80 BYN на карту.
• В тарифе «Инкогнито» отключаются внешние камеры по периметру.
• Доступны подарочные сертификаты на любой тариф.

КОНТАКТЫ
Администратор: @the_secret_house.
Чтобы забронировать, напишите в этот чат «хочу забронировать».`

const roleInfo = `ТВОЯ РОЛЬ
Ты дружелюбный консультант The Secret House. Отвечай только на русском, коротко и по делу, используя информацию выше.
Если информации недостаточно, честно скажи об этом и предложи обратиться к администратору @the_secret_house.
Не придумывай цены и условия, которых нет в списке тарифов.`

// SystemPrompt assembles the assistant instruction from the static house
// description and the live tariff list.
func SystemPrompt(tariffs []pricing.Tariff) string {
	var sb strings.Builder
	sb.WriteString(houseInfo)
	sb.WriteString("\n\nТАРИФЫ\n")
	if len(tariffs) == 0 {
		sb.WriteString("Актуальные цены уточняйте у администратора.\n")
	}
	for _, t := range tariffs {
		fmt.Fprintf(&sb, "• %s: от %s BYN, %d ч., до %d гостей", t.Name, pricing.FormatAmount(t.Price), t.DurationHours, t.MaxPeople)
		if extras := tariffExtras(t); extras != "" {
			sb.WriteString("; доп.: ")
			sb.WriteString(extras)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(roleInfo)
	return sb.String()
}

func tariffExtras(t pricing.Tariff) string {
	var parts []string
	for _, a := range []pricing.AddOn{pricing.AddOnSauna, pricing.AddOnSecretRoom, pricing.AddOnSecondBedroom, pricing.AddOnPhotoshoot} {
		if p := t.AddOnPrice(a); p.IsPositive() {
			parts = append(parts, fmt.Sprintf("%s %s BYN", strings.ToLower(a.Label()), pricing.FormatAmount(p)))
		}
	}
	if t.ExtraHourPrice.IsPositive() {
		parts = append(parts, fmt.Sprintf("доп. час %s BYN", pricing.FormatAmount(t.ExtraHourPrice)))
	}
	if t.Transfer {
		parts = append(parts, "трансфер включён")
	}
	return strings.Join(parts, ", ")
}

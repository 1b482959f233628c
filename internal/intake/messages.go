package intake

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/clinicbot/internal/chat"
)

const (
	introText = "Для записи укажите, пожалуйста, ваши данные*:\n\n" +
		"1. ФИО\n" +
		"2. Контактный номер телефона\n" +
		"3. Фото проблемной зоны (при необходимости)\n\n" +
		"*Для продолжения примите, пожалуйста, политику конфиденциальности*"
	agreeLabel  = "Я согласен(на)"
	policyLabel = "Политика персональных данных"

	askNameText = "Спасибо за ваше согласие!\nТеперь введите ваши ФИО"
	badNameText = "Некорректный формат ФИО. Пожалуйста, введите:\n\n" +
		"• Фамилию, имя, отчество (обязательно)\n" +
		"• Каждое слово с заглавной буквы\n" +
		"• Только русские буквы и дефисы\n\n" +
		"Пример: Иванов Иван или Петрова Анна-Мария Ивановна"

	askPhoneText = "Отлично! Теперь введите ваш контактный номер телефона в формате:\n\n" +
		"+7XXX XXX XX XX\n" +
		"или\n" +
		"8XXX XXX XX XX"
	badPhoneText = "Некорректный номер телефона. Пожалуйста, введите российский номер в формате:\n\n" +
		"+7XXX XXX XX XX\n" +
		"или\n" +
		"8XXX XXX XX XX\n\n" +
		"Допускаются скобки и дефисы: +7 (XXX) XXX-XX-XX"

	askPhotoChoiceText = "Хотите приложить фото проблемной зоны?"
	withPhotoLabel     = "📷 Приложить фото"
	withoutPhotoLabel  = "➡️ Без фото"
	repeatChoiceText   = "Пожалуйста, отправьте фото проблемной зоны или выберите действие:"

	askPhotoText      = "Пожалуйста, отправьте фото проблемной зоны:"
	cancelPhotoLabel  = "❌ Отменить отправку фото"
	photoTooLargeText = "Фото слишком большое (максимум %s). Попробуйте отправить другой файл:"
	photoCanceledText = "Отправка фото отменена.\nВаша заявка отправлена без фото!"

	// SubmittedText acknowledges a delivered request to the user.
	SubmittedText = "✅ Ваша заявка успешно отправлена!\n\nНаш администратор свяжется с вами в ближайшее время."

	markDoneLabel   = "❌Пометить как выполненный❌"
	markUndoneLabel = "✅Помечено как выполненное✅"
	noPhotoNote     = "📷 Фото не приложено"
)

func introPrompt(policyURL string) chat.Prompt {
	row := chat.Row(chat.Button(agreeLabel, chat.Agree{}))
	if policyURL != "" {
		row = append(row, chat.Link(policyLabel, policyURL))
	}
	return chat.Prompt{Text: introText, Options: [][]chat.Option{row}}
}

func photoChoiceOptions() [][]chat.Option {
	return [][]chat.Option{
		chat.Row(chat.Button(withPhotoLabel, chat.WithPhoto{})),
		chat.Row(chat.Button(withoutPhotoLabel, chat.WithoutPhoto{})),
	}
}

func cancelPhotoOptions() [][]chat.Option {
	return [][]chat.Option{chat.Row(chat.Button(cancelPhotoLabel, chat.CancelPhoto{}))}
}

func tooLargeText(limit int64) string {
	return fmt.Sprintf(photoTooLargeText, formatSize(limit))
}

// formatSize renders n bytes in МБ, КБ or Б with at most one decimal.
func formatSize(n int64) string {
	const kib, mib = 1024, 1024 * 1024
	switch {
	case n >= mib:
		return trimDecimal(float64(n)/mib) + "МБ"
	case n >= kib:
		return trimDecimal(float64(n)/kib) + "КБ"
	}
	return strconv.FormatInt(n, 10) + "Б"
}

func trimDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return strings.Replace(s, ".", ",", 1)
}

// OperatorPrompt renders the staff copy of a request with the mark-as-done toggle.
func OperatorPrompt(req Request) chat.Prompt {
	var b strings.Builder
	b.WriteString("🔔 Новая заявка на запись!\n\n")
	b.WriteString("👤 Клиент: " + req.FullName + "\n")
	b.WriteString("📞 Телефон: " + req.Phone + "\n\n")
	b.WriteString("🆔 ID пользователя: " + strconv.FormatInt(req.UserID, 10))
	if !req.HasPhoto() {
		b.WriteString("\n\n" + noPhotoNote)
	}
	return chat.Prompt{Text: b.String(), Options: DoneOptions(req.ID, false)}
}

// DoneOptions renders the toggle for the given done state.
func DoneOptions(requestID string, done bool) [][]chat.Option {
	if done {
		return [][]chat.Option{chat.Row(chat.Button(markUndoneLabel, chat.MarkUndone{RequestID: requestID}))}
	}
	return [][]chat.Option{chat.Row(chat.Button(markDoneLabel, chat.MarkDone{RequestID: requestID}))}
}

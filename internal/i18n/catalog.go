package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

var (
	English   = language.MustParse("en-US")
	Bulgarian = language.MustParse("bg-BG")
)

// Supported lists the languages with a catalog, fallback first.
var Supported = []language.Tag{English, Bulgarian}

var messages = map[string]map[language.Tag]string{
	"menu.overview":    {English: "Overview", Bulgarian: "Преглед"},
	"menu.homes":       {English: "My homes", Bulgarian: "Моите имоти"},
	"menu.units":       {English: "Units", Bulgarian: "Апартаменти"},
	"menu.payments":    {English: "Payments", Bulgarian: "Плащания"},
	"menu.polls":       {English: "Polls", Bulgarian: "Гласувания"},
	"menu.notices":     {English: "Notices", Bulgarian: "Съобщения"},
	"menu.documents":   {English: "Documents", Bulgarian: "Документи"},
	"menu.invitations": {English: "Invitations", Bulgarian: "Покани"},
	"menu.profile":     {English: "Profile", Bulgarian: "Профил"},

	"error.generic":            {English: "Something went wrong. Please try again.", Bulgarian: "Възникна грешка. Моля, опитайте отново."},
	"error.duplicate_building": {English: "A building with this address already exists.", Bulgarian: "Вече съществува сграда с този адрес."},
	"error.invalid_invitation": {English: "The invitation code is invalid or has expired.", Bulgarian: "Кодът за покана е невалиден или е изтекъл."},
	"error.session_expired":    {English: "Your session has expired. Please sign in again.", Bulgarian: "Сесията ви изтече. Моля, влезте отново."},
	"error.superseded":         {English: "A newer request replaced this one.", Bulgarian: "По-нова заявка замени тази."},
	"error.no_scope":           {English: "Select a building or a home first.", Bulgarian: "Първо изберете сграда или имот."},
	"error.timeout":            {English: "The server took too long to respond.", Bulgarian: "Сървърът не отговори навреме."},
	"error.network":            {English: "Could not reach the server.", Bulgarian: "Няма връзка със сървъра."},
	"error.invalid_login":      {English: "Wrong email or password.", Bulgarian: "Грешен имейл или парола."},
	"error.too_many_attempts":  {English: "Too many attempts. Try again later.", Bulgarian: "Твърде много опити. Опитайте по-късно."},
	"error.unknown_home":       {English: "This home is not linked to your account.", Bulgarian: "Този имот не е свързан с профила ви."},
	"error.upload":             {English: "The file could not be uploaded.", Bulgarian: "Файлът не можа да бъде качен."},

	"payment.succeeded":          {English: "Payment completed.", Bulgarian: "Плащането е успешно."},
	"payment.processing":         {English: "Your payment is being processed.", Bulgarian: "Плащането се обработва."},
	"payment.card_declined":      {English: "Your card was declined.", Bulgarian: "Картата ви беше отхвърлена."},
	"payment.insufficient_funds": {English: "Your card has insufficient funds.", Bulgarian: "Недостатъчна наличност по картата."},
	"payment.incorrect_cvc":      {English: "The security code is incorrect.", Bulgarian: "Кодът за сигурност е грешен."},
	"payment.expired_card":       {English: "Your card has expired.", Bulgarian: "Картата ви е с изтекъл срок."},
	"payment.processing_error":   {English: "An error occurred while processing your card.", Bulgarian: "Възникна грешка при обработката на картата."},
	"payment.validation_error":   {English: "Please check your card details.", Bulgarian: "Моля, проверете данните на картата."},
	"payment.generic":            {English: "The payment could not be completed.", Bulgarian: "Плащането не можа да бъде извършено."},

	"validation.required":       {English: "This field is required.", Bulgarian: "Полето е задължително."},
	"validation.email":          {English: "Enter a valid email address.", Bulgarian: "Въведете валиден имейл адрес."},
	"validation.min":            {English: "Must be at least %s.", Bulgarian: "Трябва да е поне %s."},
	"validation.max":            {English: "Must be at most %s.", Bulgarian: "Трябва да е най-много %s."},
	"validation.gt":             {English: "Must be greater than %s.", Bulgarian: "Трябва да е по-голямо от %s."},
	"validation.eqfield":        {English: "Passwords do not match.", Bulgarian: "Паролите не съвпадат."},
	"validation.street_address": {English: "Pick an address with a street and a number.", Bulgarian: "Изберете адрес с улица и номер."},
	"validation.payment_method": {English: "Choose cash, bank or card.", Bulgarian: "Изберете в брой, банка или карта."},
	"validation.view_flavor":    {English: "Unknown dashboard.", Bulgarian: "Непознато табло."},
	"validation.invalid":        {English: "Invalid value.", Bulgarian: "Невалидна стойност."},
}

// Keys returns every message key in the catalog.
func Keys() []string {
	keys := make([]string, 0, len(messages))
	for k := range messages {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether key has a message.
func Has(key string) bool {
	_, ok := messages[key]
	return ok
}

func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for key, byLang := range messages {
		for tag, text := range byLang {
			if err := b.SetString(tag, key, text); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

package menu

import "math/rand/v2"

// User-facing reply texts.
const (
	TextWelcome = "🔐 Добро пожаловать в официальную поддержку LKN VPN!\n\n" +
		"Я решаю типичные проблемы за 60 секунд:\n" +
		"• Ошибки подключения\n" +
		"• Низкая скорость\n" +
		"• Настройка на устройствах\n" +
		"• Вопросы о безопасности\n\n" +
		"📌 Просто выберите интересующий пункт или опишите проблему.\n\n" +
		"⚠️ Сложные вопросы передаю менеджеру\n" +
		"⏱ Среднее время реакции: 2 минуты\n" +
		"🛡 Ваш быстрый и бесплатный VPN - LKN!"

	TextHelp = "Доступные команды:\n" +
		"/start - Запуск бота\n" +
		"/help - Помощь\n\n" +
		"Используйте кнопки меню или опишите проблему."

	TextFallback = "Пожалуйста, используйте меню ниже или опишите проблему."

	TextAskDevice  = "Какое устройство вы используете?"
	TextAskServer  = "Какой сервер вы используете?"
	TextAskCountry = "В какой стране вы находитесь?"

	TextLogsInfo    = "ВПН не собирает никаких данных, кроме даты регистрации в боте."
	TextPaidSubInfo = "Платная подписка планируется ориентировочно в октябре-ноябре 2025 года."
	TextRFServer    = "РКН не блокирует данные серверов LKN VPN, что позволяет смотреть YouTube и другие сервисы без ограничений."

	TextAskIdea = "Пожалуйста, напишите свои идеи и предложения."

	TextMobileSetup = "Инструкция по подключению VPN:\n" +
		"1) Сгенерируйте ключ в боте.\n" +
		"2) Скопируйте его.\n" +
		"3) Скачайте приложение v2RayTun.\n" +
		"4) Запустите приложение, нажмите '+' (в правом верхнем углу).\n" +
		"5) Выберите 'Ручной ввод' и вставьте ключ.\n" +
		"6) Выберите конфигурацию и нажмите 'Включить'.\n" +
		"Готово! Приятного пользования."

	TextWindowsSetup = "Инструкция по подключению VPN для Windows:\n" +
		"1) Сгенерируйте ключ в боте.\n" +
		"2) Скопируйте ключ.\n" +
		"3) Скачайте приложение hiddify.\n" +
		"4) Запустите, нажмите '+' и выберите 'Ручной ввод'.\n" +
		"5) Вставьте ключ, выберите конфигурацию, нажмите 'Включить'.\n" +
		"Готово! Приятного пользования."

	TextPickDevice = "Пожалуйста, выберите устройство из списка."

	TextUkraineAdvisory = "Украинские операторы блокируют IP данного сервера.\n" +
		"Рекомендуем использовать сервер Нидерланды 🇳🇱."

	TextTroubleshooting = "Проверьте:\n" +
		"1) Интернет-соединение\n" +
		"2) Обновление приложения\n" +
		"3) Переключение авиарежима на 5 секунд\n" +
		"4) Перезапуск устройства\n" +
		"5) Выключение и включение VPN\n\n" +
		"Для Windows: в приложении рядом с '+' нажмите 'Настройки' и выберите VPN вместо системного."

	TextAskRating      = "Отлично! Пожалуйста, оцените качество обслуживания от 1 до 5."
	TextAskProblem     = "Опишите вашу проблему подробно, чтобы мы могли помочь."
	TextLowRatingAsk   = "Очень жаль, что возникли сложности. Пожалуйста, опишите, что именно не устроило."
	TextFeedbackThanks = "Спасибо за обратную связь, мы обязательно улучшим сервис."

	TextIdeaThanks = "Спасибо за вашу идею! Мы обязательно рассмотрим её.\n" +
		"Пожалуйста, оцените качество обслуживания от 1 до 5."

	TextAnswerUsage       = "Использование:\n/answer <код> <текст ответа>"
	TextAnswerNotFound    = "Код обращения не найден."
	TextAnswerSent        = "Ответ отправлен пользователю."
	TextAnswerSendFailed  = "Не удалось отправить сообщение пользователю. Возможно, он заблокировал бота."
	TextManagerReplyIntro = "Ответ менеджера:\n"
	TextAskResolution     = "Пожалуйста, нажмите 'Решено' или 'Не решено'."
)

// TicketAccepted builds the ticket confirmation with the allocated code.
func TicketAccepted(code string) string {
	return "Спасибо, заявка принята.\n" +
		"Код обращения: " + code + "\n" +
		"В течение 5 минут с вами свяжется менеджер.\n" +
		"Пожалуйста, оцените качество обслуживания от 1 до 5."
}

// FarewellPhrases is the fixed pool the closing message is drawn from.
var FarewellPhrases = []string{
	"Обращайтесь снова! 😊",
	"Спасибо, что выбрали LKN VPN!",
	"Желаем вам отличного дня! 🚀",
	"Всегда рады помочь!",
	"Будьте на связи! 📡",
	"VPN с любовью от LKN 💙",
	"Ваш комфорт — наша задача!",
	"Надеемся, всё решилось!",
	"Возвращайтесь, если что-то ещё понадобится.",
	"Мы рядом 24/7 для вас!",
	"Спасибо за использование нашего сервиса!",
	"Хорошего дня и безопасного интернета!",
}

// Farewell picks a random closing phrase.
func Farewell() string {
	return FarewellPhrases[rand.IntN(len(FarewellPhrases))]
}

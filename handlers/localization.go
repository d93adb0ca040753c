package handlers

import "strings"

// Localization holds the UI texts. Unlike a desktop UI there is no current
// language: every request picks one, so lookups take it as an argument.
type Localization struct {
	defaultLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle        = "app_title"
	KeyNavProfile      = "nav_profile"
	KeyNavLogin        = "nav_login"
	KeyNavRegister     = "nav_register"
	KeyNavLogout       = "nav_logout"
	KeyLanguage        = "language"
	KeyUsername        = "username"
	KeyPassword        = "password"
	KeyFullName        = "full_name"
	KeyFullNameLabel   = "full_name_label"
	KeyLoginSubmit     = "login_submit"
	KeyRegisterSubmit  = "register_submit"
	KeyFieldsRequired  = "fields_required"
	KeyLoginFailed     = "login_failed"
	KeyRegisterFailed  = "register_failed"
	KeyUsernameTaken   = "username_taken"
	KeyProfileTitle    = "profile_title"
	KeyUserInfo        = "user_info"
	KeyMyPosts         = "my_posts"
	KeyUserPageTitle   = "user_page_title"
	KeyUserPosts       = "user_posts"
	KeyUserLoadFailed  = "user_load_failed"
	KeyNoPosts         = "no_posts"
	KeyLikes           = "likes"
	KeyLike            = "like"
	KeyUnlike          = "unlike"
	KeyLikeFailed      = "like_failed"
	KeyPrevPage        = "prev_page"
	KeyNextPage        = "next_page"
	KeyPageOf          = "page_of"
	KeyLoginForMore    = "login_for_more"
	KeyCreatePost      = "create_post"
	KeyPostPlaceholder = "post_placeholder"
	KeyPublish         = "publish"
	KeyLoginToPost     = "login_to_post"
	KeyPostFailed      = "post_failed"
	KeyEmptyPost       = "empty_post"
	KeyPostTitle       = "post_title"
	KeyPostNotFound    = "post_not_found"
	KeyPostLoadFailed  = "post_load_failed"
	KeyPostedAt        = "posted_at"
	KeyYouLiked        = "you_liked"
	KeyNotLiked        = "not_liked"
	KeyPageNotFound    = "page_not_found"
	KeyServerError     = "server_error"
	KeyBackHome        = "back_home"
)

// NewLocalization falls back to Ukrainian when defaultLanguage is unknown.
func NewLocalization(defaultLanguage string) *Localization {
	l := &Localization{
		defaultLanguage: "uk",
		texts:           make(map[string]map[string]string),
	}
	l.initializeTexts()

	if l.Supported(defaultLanguage) {
		l.defaultLanguage = strings.ToLower(defaultLanguage)
	}
	return l
}

func (l *Localization) Supported(lang string) bool {
	_, ok := l.texts[strings.ToLower(lang)]
	return ok
}

func (l *Localization) Default() string {
	return l.defaultLanguage
}

// Text returns the text for key in lang, then in the default language, then
// the key itself.
func (l *Localization) Text(lang, key string) string {
	if l == nil {
		return key
	}
	if texts, ok := l.texts[strings.ToLower(lang)]; ok {
		if text, ok := texts[key]; ok {
			return text
		}
	}
	if text, ok := l.texts[l.defaultLanguage][key]; ok {
		return text
	}
	return key
}

func (l *Localization) initializeTexts() {
	l.texts["uk"] = map[string]string{
		KeyAppTitle:        "KPI-tter",
		KeyNavProfile:      "Моя сторінка",
		KeyNavLogin:        "Вхід",
		KeyNavRegister:     "Реєстрація",
		KeyNavLogout:       "Вийти",
		KeyLanguage:        "Мова",
		KeyUsername:        "Ім'я користувача:",
		KeyPassword:        "Пароль:",
		KeyFullName:        "Повне ім'я (необов'язково):",
		KeyFullNameLabel:   "Повне ім'я:",
		KeyLoginSubmit:     "Увійти",
		KeyRegisterSubmit:  "Зареєструватися",
		KeyFieldsRequired:  "Введіть ім'я користувача та пароль.",
		KeyLoginFailed:     "Невірне ім'я користувача або пароль",
		KeyRegisterFailed:  "Помилка при реєстрації. Спробуйте ще раз.",
		KeyUsernameTaken:   "Це ім'я користувача вже зайняте.",
		KeyProfileTitle:    "Моя сторінка",
		KeyUserInfo:        "Інформація про користувача",
		KeyMyPosts:         "Мої пости",
		KeyUserPageTitle:   "Сторінка користувача",
		KeyUserPosts:       "Пости користувача",
		KeyUserLoadFailed:  "Не вдалося отримати дані про користувача.",
		KeyNoPosts:         "Немає публікацій для відображення.",
		KeyLikes:           "Лайків:",
		KeyLike:            "Подобається",
		KeyUnlike:          "Більше не подобається",
		KeyLikeFailed:      "Не вдалося оновити лайк. Спробуйте ще раз.",
		KeyPrevPage:        "Попередня сторінка",
		KeyNextPage:        "Наступна сторінка",
		KeyPageOf:          "Сторінка %d з %d",
		KeyLoginForMore:    "Авторизуйтесь, щоб побачити більше постів.",
		KeyCreatePost:      "Створити новий пост",
		KeyPostPlaceholder: "Введіть ваш пост...",
		KeyPublish:         "Опублікувати",
		KeyLoginToPost:     "Будь ласка, увійдіть, щоб створити пост.",
		KeyPostFailed:      "Помилка при створенні посту. Спробуйте знову.",
		KeyEmptyPost:       "Пост не може бути порожнім.",
		KeyPostTitle:       "Пост",
		KeyPostNotFound:    "Пост не знайдено або невірне ім'я користувача чи ідентифікатор посту.",
		KeyPostLoadFailed:  "Під час завантаження посту сталася помилка.",
		KeyPostedAt:        "Опубліковано:",
		KeyYouLiked:        "Вам подобається цей пост.",
		KeyNotLiked:        "Ви ще не вподобали цей пост.",
		KeyPageNotFound:    "404: сторінку не знайдено",
		KeyServerError:     "500: внутрішня помилка сервера",
		KeyBackHome:        "На головну",
	}

	l.texts["en"] = map[string]string{
		KeyAppTitle:        "KPI-tter",
		KeyNavProfile:      "My page",
		KeyNavLogin:        "Log in",
		KeyNavRegister:     "Sign up",
		KeyNavLogout:       "Log out",
		KeyLanguage:        "Language",
		KeyUsername:        "Username:",
		KeyPassword:        "Password:",
		KeyFullName:        "Full name (optional):",
		KeyFullNameLabel:   "Full name:",
		KeyLoginSubmit:     "Log in",
		KeyRegisterSubmit:  "Sign up",
		KeyFieldsRequired:  "Enter a username and a password.",
		KeyLoginFailed:     "Invalid username or password",
		KeyRegisterFailed:  "Registration failed. Please try again.",
		KeyUsernameTaken:   "This username is already taken.",
		KeyProfileTitle:    "My page",
		KeyUserInfo:        "User information",
		KeyMyPosts:         "My posts",
		KeyUserPageTitle:   "User page",
		KeyUserPosts:       "User's posts",
		KeyUserLoadFailed:  "Could not load the user.",
		KeyNoPosts:         "No posts to show.",
		KeyLikes:           "Likes:",
		KeyLike:            "Like",
		KeyUnlike:          "Unlike",
		KeyLikeFailed:      "Could not update the like. Please try again.",
		KeyPrevPage:        "Previous page",
		KeyNextPage:        "Next page",
		KeyPageOf:          "Page %d of %d",
		KeyLoginForMore:    "Log in to see more posts.",
		KeyCreatePost:      "Create a new post",
		KeyPostPlaceholder: "Write your post...",
		KeyPublish:         "Publish",
		KeyLoginToPost:     "Please log in to create a post.",
		KeyPostFailed:      "Could not create the post. Please try again.",
		KeyEmptyPost:       "A post cannot be empty.",
		KeyPostTitle:       "Post",
		KeyPostNotFound:    "Post not found or invalid username/post_id.",
		KeyPostLoadFailed:  "An error occurred while fetching the post.",
		KeyPostedAt:        "Posted:",
		KeyYouLiked:        "You liked this post.",
		KeyNotLiked:        "You have not liked this post yet.",
		KeyPageNotFound:    "404: page not found",
		KeyServerError:     "500: internal server error",
		KeyBackHome:        "Home",
	}
}

// Package locale содержит словари es/en и поиск строк по точечному пути.
package locale

import (
	"embed"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"
)

//go:embed bundles/*.json
var bundlesFS embed.FS

// Поддерживаемые языки.
const (
	Spanish = "es"
	English = "en"
)

var (
	supported = []string{Spanish, English}
	matcher   = language.NewMatcher([]language.Tag{language.Spanish, language.English})
)

// Bundles хранит загруженные словари.
type Bundles struct {
	data     map[string][]byte
	fallback string
}

// Load загружает встроенные словари.
func Load() (*Bundles, error) {
	b := &Bundles{
		data:     make(map[string][]byte, len(supported)),
		fallback: Spanish,
	}
	for _, lang := range supported {
		raw, err := bundlesFS.ReadFile("bundles/" + lang + ".json")
		if err != nil {
			return nil, fmt.Errorf("read bundle %s: %w", lang, err)
		}
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("bundle %s is not valid json", lang)
		}
		b.data[lang] = raw
	}
	return b, nil
}

// MustLoad загружает словари и паникует при ошибке. Словари встроены в бинарник.
func MustLoad() *Bundles {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// Resolve выбирает язык по заголовку Accept-Language.
func Resolve(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Spanish
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Spanish
	}
	return supported[idx]
}

// T возвращает строку по ключу вида "SANDetails.turnsRemaining" с подстановкой {{name}}.
// Если ключ не найден, используется испанский словарь, затем сам ключ.
func (b *Bundles) T(lang, key string, params map[string]any) string {
	text, ok := b.lookup(lang, key)
	if !ok && lang != b.fallback {
		text, ok = b.lookup(b.fallback, key)
	}
	if !ok {
		return key
	}
	if len(params) == 0 {
		return text
	}

	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

func (b *Bundles) lookup(lang, key string) (string, bool) {
	raw, ok := b.data[lang]
	if !ok {
		return "", false
	}
	res := gjson.GetBytes(raw, key)
	if !res.Exists() || res.Type != gjson.String {
		return "", false
	}
	return res.String(), true
}

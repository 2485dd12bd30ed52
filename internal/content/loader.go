package content

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var seedCatalog []byte

// idNamespace derives stable identifiers for entries that omit one.
var idNamespace = uuid.MustParse("6f1c1d1e-8a4b-4f5e-9a52-3c1c0b7d2a10")

// Catalog is the loaded, ordered content set.
type Catalog struct {
	Articles  []Article
	Questions []QuizQuestion
}

type document struct {
	Articles  []Article      `yaml:"articles"`
	Questions []QuizQuestion `yaml:"questions"`
}

// LoadSeed returns the catalog bundled with the binary.
func LoadSeed() (*Catalog, error) {
	doc, err := parseDocument(seedCatalog)
	if err != nil {
		return nil, fmt.Errorf("loading seed catalog: %w", err)
	}
	c := &Catalog{}
	c.merge(doc, "seed")
	return c, nil
}

// LoadDir loads every YAML catalog file under root in lexical path order.
// Invalid files are skipped with a warning.
func LoadDir(root string) (*Catalog, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	c := &Catalog{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		doc, err := parseDocument(data)
		if err != nil {
			slog.Warn("skipping invalid catalog file", "path", path, "error", err)
			return nil
		}
		c.merge(doc, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded", "root", root, "articles", len(c.Articles), "questions", len(c.Questions))
	return c, nil
}

func parseDocument(data []byte) (document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return document{}, fmt.Errorf("parse yaml: %w", err)
	}
	if raw == nil {
		return document{}, nil
	}
	if err := ValidateDocument(raw); err != nil {
		return document{}, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode catalog: %w", err)
	}
	return doc, nil
}

// merge appends doc to c, deriving missing ids and dropping duplicates and
// questions that reference unknown articles.
func (c *Catalog) merge(doc document, source string) {
	known := make(map[string]bool, len(c.Articles))
	for _, a := range c.Articles {
		known[a.ID] = true
	}

	for _, a := range doc.Articles {
		if a.ID == "" {
			a.ID = uuid.NewSHA1(idNamespace, []byte(a.Title)).String()
		}
		if known[a.ID] {
			slog.Warn("skipping duplicate article", "source", source, "id", a.ID)
			continue
		}
		known[a.ID] = true
		c.Articles = append(c.Articles, a)
	}

	seen := make(map[string]bool, len(c.Questions))
	for _, q := range c.Questions {
		seen[q.ID] = true
	}
	for _, q := range doc.Questions {
		if q.ID == "" {
			q.ID = uuid.NewSHA1(idNamespace, []byte(q.ArticleID+"\x00"+q.Question)).String()
		}
		if err := q.Validate(); err != nil {
			slog.Warn("skipping invalid question", "source", source, "error", err)
			continue
		}
		if !known[q.ArticleID] {
			slog.Warn("skipping question for unknown article", "source", source, "article_id", q.ArticleID)
			continue
		}
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		c.Questions = append(c.Questions, q)
	}
}

// Package catalog holds the read-only list of programming topics the tutor
// persona can teach.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"voicecoach/core"

	"github.com/bytedance/sonic"
)

// TopicRecord is one teachable concept.
type TopicRecord struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	SampleQuestion string `json:"sample_question"`
}

// Catalog is an ordered, immutable snapshot of topics. Build it once at
// startup and hand it to every tutor session.
type Catalog struct {
	topics []TopicRecord
}

// New copies topics into a Catalog.
func New(topics []TopicRecord) *Catalog {
	cp := make([]TopicRecord, len(topics))
	copy(cp, topics)
	return &Catalog{topics: cp}
}

// Default returns the built-in topic set.
func Default() *Catalog {
	return New(defaultTopics)
}

// Load reads a JSON array of topics from path. Any problem (missing file,
// unreadable, malformed, empty) is logged and the default set is returned
// instead.
func Load(path string, logger *core.Logger) *Catalog {
	if logger == nil {
		logger = core.GetLogger()
	}
	logger = logger.With(map[string]any{"component": "catalog", "path": path})

	if path == "" {
		logger.Info("no content file configured, using default programming concepts")
		return Default()
	}

	topics, err := readFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("content file not found, using default programming concepts")
		} else {
			logger.With(map[string]any{"error": err}).Error("error loading content, using default programming concepts")
		}
		return Default()
	}

	logger.Infof("loaded %d topics", len(topics))
	return New(topics)
}

func readFile(path string) ([]TopicRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var topics []TopicRecord
	if err := sonic.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("catalog: parse %q: %w", path, err)
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("catalog: %q contains no topics", path)
	}
	for i, t := range topics {
		if t.ID == "" {
			return nil, fmt.Errorf("catalog: %q: topic %d has no id", path, i)
		}
	}
	return topics, nil
}

// Find returns the topic whose id equals strings.ToLower(id).
func (c *Catalog) Find(id string) (TopicRecord, bool) {
	id = strings.ToLower(id)
	for _, t := range c.topics {
		if t.ID == id {
			return t, true
		}
	}
	return TopicRecord{}, false
}

// IDs returns topic ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.topics))
	for i, t := range c.topics {
		ids[i] = t.ID
	}
	return ids
}

// Topics returns a copy of all topics in catalog order.
func (c *Catalog) Topics() []TopicRecord {
	cp := make([]TopicRecord, len(c.topics))
	copy(cp, c.topics)
	return cp
}

func (c *Catalog) Len() int {
	return len(c.topics)
}

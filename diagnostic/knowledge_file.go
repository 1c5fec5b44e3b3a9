package diagnostic

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// KnowledgeDocument is the on-disk shape of a knowledge base. Lists keep the
// table order, which decides synonym collisions and catalog iteration.
type KnowledgeDocument struct {
	Symptoms   []SymptomSynonyms `json:"symptoms" yaml:"symptoms" toml:"symptoms"`
	Conditions []Condition       `json:"conditions" yaml:"conditions" toml:"conditions"`
}

// Document returns a serializable copy of the knowledge base.
func (kb *KnowledgeBase) Document() KnowledgeDocument {
	return KnowledgeDocument{
		Symptoms:   kb.Symptoms(),
		Conditions: kb.Conditions(),
	}
}

// LoadKnowledgeFile reads and validates a knowledge base from a .yaml, .yml, .toml or .json file.
func LoadKnowledgeFile(path string) (*KnowledgeBase, error) {
	clean := filepath.Clean(strings.TrimSpace(path))
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, errors.Wrapf(err, "read knowledge file %s", clean)
	}
	doc, err := DecodeKnowledge(clean, data)
	if err != nil {
		return nil, err
	}
	kb, err := NewKnowledgeBase(doc.Symptoms, doc.Conditions)
	if err != nil {
		return nil, errors.Wrapf(err, "knowledge file %s", clean)
	}
	return kb, nil
}

// DecodeKnowledge parses data using the codec selected by the extension of name.
func DecodeKnowledge(name string, data []byte) (KnowledgeDocument, error) {
	var doc KnowledgeDocument
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return doc, errors.WithHint(errors.Wrapf(ErrUnsupportedFormat, "%s", filepath.Base(name)),
			"use a .yaml, .toml or .json file")
	}
	if err != nil {
		return doc, errors.Wrapf(err, "decode %s", filepath.Base(name))
	}
	return doc, nil
}

// WriteKnowledgeFile serializes kb to path, choosing the codec from the extension.
func WriteKnowledgeFile(path string, kb *KnowledgeBase) error {
	data, err := EncodeKnowledge(path, kb)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Clean(path), data)
}

// EncodeKnowledge renders kb in the format selected by the extension of name.
func EncodeKnowledge(name string, kb *KnowledgeBase) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil, errors.WithHint(errors.Wrapf(ErrUnsupportedFormat, "%s", filepath.Base(name)),
			"use a .yaml, .toml or .json file")
	}
	data, err := encodeByExt(name, kb.Document())
	if err != nil {
		return nil, errors.Wrap(err, "encode knowledge base")
	}
	return data, nil
}

// EnsureKnowledgeFile writes the compiled-in table to path when no file exists
// there yet, giving operators a starting point for their own table.
func EnsureKnowledgeFile(path string) (bool, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return false, nil
	}
	clean = filepath.Clean(clean)
	if _, err := os.Stat(clean); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, errors.Wrapf(err, "stat knowledge file %s", clean)
	}
	if err := WriteKnowledgeFile(clean, DefaultKnowledgeBase()); err != nil {
		return false, err
	}
	return true, nil
}

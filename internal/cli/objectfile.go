package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/netforge-io/netforge/pkg/types"
)

// ObjectDoc is one object loaded from a file, bound to the endpoint it
// should be sent to.
type ObjectDoc struct {
	Endpoint string
	Data     types.Record
}

// LoadObjectFile reads a YAML or JSON file and returns the object documents
// it contains. A file may hold several documents separated by "---". Each
// document is either a bare object payload, or a wrapper with an "endpoint"
// key and the payload under "data". Bare documents and wrappers without an
// endpoint use defaultEndpoint; it is an error when neither names one.
// Environment variable templates in the file are expanded before parsing.
func LoadObjectFile(path, defaultEndpoint string) ([]ObjectDoc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read file %s", path)
	}

	raw = replaceTabsWithSpaces(raw)

	processed, err := PreprocessYAML(raw)
	if err != nil {
		return nil, err
	}

	docs, err := parseMultiYAML(processed)
	if err != nil {
		return nil, err
	}

	out := make([]ObjectDoc, 0, len(docs))
	for i, doc := range docs {
		od, err := docToObject(doc, defaultEndpoint)
		if err != nil {
			return nil, fmt.Errorf("document %d in %s: %v", i+1, path, err)
		}
		out = append(out, od)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no objects found in %s", path)
	}
	return out, nil
}

// parseMultiYAML splits a multi-document YAML stream and decodes each
// document into a mapping. Empty documents are skipped.
func parseMultiYAML(raw []byte) ([]map[string]any, error) {
	content := strings.TrimSpace(string(raw))
	if len(content) == 0 || strings.Trim(content, "- \n\t") == "" {
		return nil, nil
	}

	dec := yaml.NewDecoder(strings.NewReader(content))
	var docs []map[string]any
	for {
		var doc map[string]any
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %v", err)
		}
		if len(doc) == 0 {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// docToObject resolves one parsed document into an ObjectDoc
func docToObject(doc map[string]any, defaultEndpoint string) (ObjectDoc, error) {
	if isWrappedDoc(doc) {
		endpoint, _ := doc["endpoint"].(string)
		if endpoint == "" {
			endpoint = defaultEndpoint
		}
		if endpoint == "" {
			return ObjectDoc{}, fmt.Errorf("document has no endpoint and none was given on the command line")
		}
		data, ok := doc["data"].(map[string]any)
		if !ok {
			return ObjectDoc{}, fmt.Errorf("data must be a mapping")
		}
		return ObjectDoc{Endpoint: endpoint, Data: types.Record(data)}, nil
	}

	if defaultEndpoint == "" {
		return ObjectDoc{}, fmt.Errorf("document has no endpoint and none was given on the command line")
	}
	return ObjectDoc{Endpoint: defaultEndpoint, Data: types.Record(doc)}, nil
}

// isWrappedDoc reports whether doc uses the endpoint/data wrapper form. A
// document with a "data" key and any other field besides "endpoint" is
// treated as a bare payload that happens to contain "data".
func isWrappedDoc(doc map[string]any) bool {
	if _, ok := doc["data"]; !ok {
		return false
	}
	for k := range doc {
		if k != "endpoint" && k != "data" {
			return false
		}
	}
	return true
}

// groupByEndpoint groups documents by endpoint, preserving the order in
// which each endpoint first appears in the file.
func groupByEndpoint(docs []ObjectDoc) ([]string, map[string]types.RecordSet) {
	var order []string
	groups := make(map[string]types.RecordSet)
	for _, doc := range docs {
		if _, ok := groups[doc.Endpoint]; !ok {
			order = append(order, doc.Endpoint)
		}
		groups[doc.Endpoint] = append(groups[doc.Endpoint], doc.Data)
	}
	return order, groups
}

// replaceTabsWithSpaces replaces all tab characters with four spaces in a byte slice
func replaceTabsWithSpaces(b []byte) []byte {
	space := []byte("    ")
	var result []byte
	for _, c := range b {
		if c == '\t' {
			result = append(result, space...)
		} else {
			result = append(result, c)
		}
	}
	return result
}

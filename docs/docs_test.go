package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

type document struct {
	Paths map[string]map[string]struct {
		Parameters []struct {
			In     string `json:"in"`
			Schema struct {
				Ref string `json:"$ref"`
			} `json:"schema"`
		} `json:"parameters"`
	} `json:"paths"`
	Definitions map[string]struct {
		Properties map[string]map[string]any `json:"properties"`
	} `json:"definitions"`
}

func readDocument(t *testing.T) document {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("doc is not valid json: %v", err)
	}
	return doc
}

func TestUpdateUserBodyIsPatchSchema(t *testing.T) {
	doc := readDocument(t)

	op, ok := doc.Paths["/users/{username}"]["patch"]
	if !ok {
		t.Fatalf("PATCH /users/{username} is not documented")
	}

	var ref string
	for _, p := range op.Parameters {
		if p.In == "body" {
			ref = p.Schema.Ref
		}
	}
	if ref != "#/definitions/domain.UserPatch" {
		t.Fatalf("unexpected PATCH body schema %q", ref)
	}

	def, ok := doc.Definitions["domain.UserPatch"]
	if !ok {
		t.Fatalf("domain.UserPatch definition missing")
	}
	for _, field := range []string{"username", "email", "password", "role"} {
		prop, ok := def.Properties[field]
		if !ok {
			t.Fatalf("field %s missing from patch schema", field)
		}
		if prop["x-nullable"] != true {
			t.Fatalf("field %s should be nullable", field)
		}
	}
}

func TestEveryBodyRefIsDefined(t *testing.T) {
	doc := readDocument(t)

	for path, ops := range doc.Paths {
		for method, op := range ops {
			for _, p := range op.Parameters {
				if p.Schema.Ref == "" {
					continue
				}
				name := p.Schema.Ref[len("#/definitions/"):]
				if _, ok := doc.Definitions[name]; !ok {
					t.Fatalf("%s %s references undefined %s", method, path, name)
				}
			}
		}
	}
}

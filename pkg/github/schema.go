package github

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const repositorySchema = `{
  "type": "object",
  "required": ["name", "html_url", "default_branch", "branches_url", "tags_url", "owner", "license"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": ["string", "null"]},
    "html_url": {"type": "string", "minLength": 1},
    "default_branch": {"type": "string", "minLength": 1},
    "branches_url": {"type": "string", "minLength": 1},
    "tags_url": {"type": "string", "minLength": 1},
    "owner": {
      "type": "object",
      "required": ["login", "url"],
      "properties": {
        "login": {"type": "string"},
        "url": {"type": "string", "minLength": 1}
      }
    },
    "license": {
      "type": ["object", "null"],
      "properties": {
        "url": {"type": ["string", "null"]}
      }
    }
  }
}`

const ownerSchema = `{
  "type": "object",
  "required": ["login"],
  "properties": {
    "login": {"type": "string", "minLength": 1},
    "name": {"type": ["string", "null"]}
  }
}`

const licenseSchema = `{
  "type": "object",
  "required": ["key", "html_url"],
  "properties": {
    "key": {"type": "string"},
    "html_url": {"type": "string", "minLength": 1}
  }
}`

const branchSchema = `{
  "type": "object",
  "required": ["name", "commit"],
  "properties": {
    "name": {"type": "string"},
    "commit": {
      "type": "object",
      "required": ["commit"],
      "properties": {
        "commit": {
          "type": "object",
          "required": ["message"],
          "properties": {"message": {"type": "string"}}
        }
      }
    }
  }
}`

const tagsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name"],
    "properties": {"name": {"type": "string"}}
  }
}`

var schemas = map[string]*gojsonschema.Schema{
	"repository": mustSchema(repositorySchema),
	"owner":      mustSchema(ownerSchema),
	"license":    mustSchema(licenseSchema),
	"branch":     mustSchema(branchSchema),
	"tags":       mustSchema(tagsSchema),
}

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return s
}

// SchemaError reports a response that does not have the shape the pipeline
// depends on.
type SchemaError struct {
	Resource string
	URL      string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected %s response from %s: %s", e.Resource, e.URL, strings.Join(e.Problems, "; "))
}

func validate(resource, url string, raw []byte) error {
	schema, ok := schemas[resource]
	if !ok {
		return fmt.Errorf("no schema registered for %s", resource)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &SchemaError{Resource: resource, URL: url, Problems: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &SchemaError{Resource: resource, URL: url, Problems: problems}
}

package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"

	"storybook/pkg/storytree"
)

const StoryFormatName = "branching_story"

func generateSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

// StorySchema describes the payload a generator must return: one tree plus
// the character roles and locations it uses, all with placeholder ids.
var StorySchema = generateSchema[storytree.Generated]()

// StructuredOutputsResponseFormat is the response_format the generator call
// sends so the model answers with a StorySchema document.
func StructuredOutputsResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        StoryFormatName,
		Description: openai.String("Branching children's story with placeholder ids for nodes, choices, characters and locations"),
		Schema:      StorySchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}

package spec

import (
	"encoding/json"
	"fmt"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// convertV2ToV3 converts a Swagger 2.0 document with kin-openapi and returns
// both the converted document and its YAML node form for ref resolution.
//
// The v2 document goes through the ordered Value first: decoding YAML straight
// into openapi2.T would ignore its json field names (basePath, securityDefinitions)
// and trip over unquoted integer response codes.
func convertV2ToV3(root *yaml.Node) (*openapi3.T, *yaml.Node, error) {
	tree, err := FromNode(root)
	if err != nil {
		return nil, nil, err
	}
	data, err := tree.MarshalJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("encode v2 document: %w", err)
	}

	var doc2 openapi2.T
	if err := json.Unmarshal(data, &doc2); err != nil {
		return nil, nil, fmt.Errorf("decode v2 document: %w", err)
	}
	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, nil, err
	}

	out, err := json.Marshal(doc3)
	if err != nil {
		return nil, nil, fmt.Errorf("encode v3 document: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(out, &node); err != nil {
		return nil, nil, fmt.Errorf("decode v3 document: %w", err)
	}
	return doc3, &node, nil
}

package tools

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/baalimago/qwery/internal/models"
)

type HashTool models.Specification

var Hash = HashTool{
	Name:        "hash",
	Description: "Compute the cryptographic hash of some data, returned as a lowercase hex digest.",
	Inputs: &models.InputSchema{
		Type:     "object",
		Required: []string{"algorithm", "data"},
		Properties: map[string]models.ParameterObject{
			"algorithm": {
				Type:        "string",
				Description: "The hash algorithm to use.",
				Enum:        []string{"md5", "sha1", "sha256", "sha512"},
			},
			"data": {
				Type:        "string",
				Description: "The data to hash.",
			},
		},
	},
}

func (h HashTool) Call(input models.Input) (string, error) {
	algo, ok := input["algorithm"].(string)
	if !ok {
		return "", fmt.Errorf("algorithm must be a string")
	}
	data, ok := input["data"].(string)
	if !ok {
		return "", fmt.Errorf("data must be a string")
	}

	var hasher hash.Hash
	switch algo {
	case "md5":
		hasher = md5.New()
	case "sha1":
		hasher = sha1.New()
	case "sha256":
		hasher = sha256.New()
	case "sha512":
		hasher = sha512.New()
	default:
		return "", fmt.Errorf("unsupported algorithm: '%v'", algo)
	}
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h HashTool) Specification() models.Specification {
	return models.Specification(Hash)
}

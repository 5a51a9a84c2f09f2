package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

const tokenModel = "gpt-4o-mini"

// NumTokens counts tokens the way the generator model does. The encoding is
// fetched and cached by tiktoken on first use.
func NumTokens(text string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(tokenModel)
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}

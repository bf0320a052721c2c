package codec

import (
	"encoding/base64"
	"fmt"
)

func base64Encoding(urlSafe bool) *base64.Encoding {
	if urlSafe {
		return base64.URLEncoding.Strict()
	}
	return base64.StdEncoding.Strict()
}

// Base64Encode encodes b using the padded standard or URL-safe alphabet.
func Base64Encode(b []byte, urlSafe bool) string {
	return base64Encoding(urlSafe).EncodeToString(b)
}

// Base64Decode decodes a padded standard or URL-safe string.
func Base64Decode(s string, urlSafe bool) ([]byte, error) {
	out, err := base64Encoding(urlSafe).DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

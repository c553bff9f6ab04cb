// Package schemas embeds the JSON Schemas that describe structured profile data.
package schemas

import _ "embed"

// ProfileData is the JSON Schema for an imported profile (the profileData payload).
//
//go:embed profile_data.schema.json
var ProfileData []byte

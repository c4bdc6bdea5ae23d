package libstore

import (
	jsoniter "github.com/json-iterator/go"
)

// json is an "encoding/json" compatible API, shared by every decoder in
// this package.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

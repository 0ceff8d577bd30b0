package persist

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// mergeKnownFields writes every leaf of the known document into prev and
// returns the pretty-printed result. Keys present in prev that the known
// document does not carry are left in place, so settings written by other
// releases survive a save.
func mergeKnownFields(prev, known []byte) ([]byte, error) {
	if len(prev) == 0 || !gjson.ValidBytes(prev) {
		return pretty.PrettyOptions(known, prettyOpts), nil
	}

	out := prev
	var err error
	gjson.ParseBytes(known).ForEach(func(key, value gjson.Result) bool {
		out, err = setKnown(out, key.String(), value)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(out, prettyOpts), nil
}

// setKnown writes value at path. Objects recurse per key so unknown
// sibling keys inside nested sections are kept; everything else, arrays
// included, is replaced wholesale.
func setKnown(doc []byte, path string, value gjson.Result) ([]byte, error) {
	if value.IsObject() && gjson.GetBytes(doc, path).IsObject() {
		out := doc
		var err error
		value.ForEach(func(key, child gjson.Result) bool {
			out, err = setKnown(out, path+"."+key.String(), child)
			return err == nil
		})
		return out, err
	}

	out, err := sjson.SetRawBytes(doc, path, []byte(value.Raw))
	if err != nil {
		return nil, fmt.Errorf("writing field %s: %w", path, err)
	}
	return out, nil
}

var prettyOpts = &pretty.Options{Indent: "  ", SortKeys: false}

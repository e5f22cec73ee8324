package util

import (
	"os"

	"github.com/vmihailenco/msgpack"
)

// SaveStruct serializes obj with msgpack and writes it to path atomically
// via a rename.
func SaveStruct[T any](path string, obj T) error {
	data, err := msgpack.Marshal(obj)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// LoadStruct reads path and deserializes it into a T.
func LoadStruct[T any](path string) (T, error) {
	var res T

	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}

	if err := msgpack.Unmarshal(data, &res); err != nil {
		return res, err
	}

	return res, nil
}

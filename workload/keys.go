package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/safeopen"

	"github.com/benz9527/treex/lib/infra"
)

var ErrInvalidKey = errors.New("[workload] invalid key")

// ParseKeys reads whitespace separated integer keys.
func ParseKeys(r io.Reader) ([]int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	keys := make([]int, 0, 64)
	for scanner.Scan() {
		key, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return nil, infra.WrapErrorStackWithMessage(ErrInvalidKey,
				fmt.Sprintf("token %q at %d", scanner.Text(), len(keys)),
			)
		}
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return keys, nil
}

// LoadKeys reads the keys from the file beneath dir. A name escaping
// the dir is rejected.
func LoadKeys(dir, name string) ([]int, error) {
	f, err := safeopen.OpenBeneath(dir, name)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "open keys file")
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseKeys(f)
}

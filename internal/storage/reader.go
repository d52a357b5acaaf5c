// internal/storage/reader.go
//
// 手寫的最小讀取器：以 cursor 逐字元前進，只認得本格式需要的兩種值
// （雙引號字串與不帶正負號的十進位數字）。不支援跳脫字元。
package storage

import (
	"fmt"
	"strings"
)

// cursor 指向 src 中目前讀取的位置。
type cursor struct {
	src string
	pos int
}

func (c *cursor) eof() bool { return c.pos >= len(c.src) }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

func (c *cursor) skipSpace() {
	for !c.eof() && isSpace(c.src[c.pos]) {
		c.pos++
	}
}

func (c *cursor) expect(b byte) error {
	if c.peek() != b {
		return fmt.Errorf("%w: want %q at offset %d", ErrMalformed, b, c.pos)
	}
	c.pos++
	return nil
}

// readString 讀取 "..."，回傳引號內的內容。
func (c *cursor) readString() (string, error) {
	if err := c.expect('"'); err != nil {
		return "", err
	}
	end := strings.IndexByte(c.src[c.pos:], '"')
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrMalformed, c.pos-1)
	}
	s := c.src[c.pos : c.pos+end]
	c.pos += end + 1
	return s, nil
}

// readNumber 讀取由數字與最多一個小數點組成的字元序列。
func (c *cursor) readNumber() (string, error) {
	start := c.pos
	dot := false
	for !c.eof() {
		ch := c.src[c.pos]
		if ch == '.' && !dot {
			dot = true
		} else if ch < '0' || ch > '9' {
			break
		}
		c.pos++
	}
	if c.pos == start {
		return "", fmt.Errorf("%w: want number at offset %d", ErrMalformed, start)
	}
	return c.src[start:c.pos], nil
}

// readValue 依開頭字元決定讀字串或數字。
func (c *cursor) readValue() (string, error) {
	c.skipSpace()
	if c.peek() == '"' {
		return c.readString()
	}
	return c.readNumber()
}

// readArray 讀取以 [ 開頭、深度配對到對應 ] 的區段，回傳括號內的文字。
// 引號內的括號不列入計算。
func (c *cursor) readArray() (string, error) {
	c.skipSpace()
	if err := c.expect('['); err != nil {
		return "", err
	}
	start := c.pos
	depth := 1
	inString := false
	for ; !c.eof(); c.pos++ {
		ch := c.src[c.pos]
		if inString {
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				inner := c.src[start:c.pos]
				c.pos++
				return inner, nil
			}
		}
	}
	return "", fmt.Errorf("%w: unterminated array at offset %d", ErrMalformed, start-1)
}

// seekKey 找出 "key" 之後、冒號之後的位置。
// 若某處出現同名字串但後面不是冒號（例如使用者名稱剛好等於欄位名），略過繼續找。
func seekKey(src, key string) (*cursor, bool) {
	quoted := `"` + key + `"`
	from := 0
	for {
		i := strings.Index(src[from:], quoted)
		if i < 0 {
			return nil, false
		}
		c := &cursor{src: src, pos: from + i + len(quoted)}
		c.skipSpace()
		if c.peek() == ':' {
			c.pos++
			return c, true
		}
		from += i + 1
	}
}

// lookup 在 src 中以鍵名找出對應的值；每個欄位各自從頭掃描，與欄位順序無關。
func lookup(src, key string) (string, error) {
	c, ok := seekKey(src, key)
	if !ok {
		return "", fmt.Errorf("%w: missing key %q", ErrMalformed, key)
	}
	return c.readValue()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

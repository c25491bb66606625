package xmlio

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// Scalar attributes are parsed permissively: a malformed value reads as the
// zero value rather than failing the document.

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[0] {
	case '1', 't', 'T', 'y', 'Y':
		return true
	}
	return false
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseUint(s string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// attr returns the value of attribute key and whether it is present
func attr(el *etree.Element, key string) (string, bool) {
	a := el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

func boolAttr(el *etree.Element, key string) (bool, bool) {
	v, ok := attr(el, key)
	return parseBool(v), ok
}

func intAttr(el *etree.Element, key string) (int, bool) {
	v, ok := attr(el, key)
	return parseInt(v), ok
}

func uintAttr(el *etree.Element, key string) (uint, bool) {
	v, ok := attr(el, key)
	return parseUint(v), ok
}

// childText returns the text of the first child named tag
func childText(el *etree.Element, tag string) (string, bool) {
	c := el.SelectElement(tag)
	if c == nil {
		return "", false
	}
	return c.Text(), true
}

// texts returns the text of every child element, in order
func texts(el *etree.Element) []string {
	var out []string
	for _, c := range el.ChildElements() {
		out = append(out, c.Text())
	}
	return out
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func setIntAttr(el *etree.Element, key string, n int) {
	el.CreateAttr(key, strconv.Itoa(n))
}

func setUintAttr(el *etree.Element, key string, n uint) {
	el.CreateAttr(key, strconv.FormatUint(uint64(n), 10))
}

func setBoolAttr(el *etree.Element, key string, b bool) {
	el.CreateAttr(key, formatBool(b))
}

// textChild appends <tag>text</tag> to el
func textChild(el *etree.Element, tag, text string) *etree.Element {
	c := el.CreateElement(tag)
	c.SetText(text)
	return c
}

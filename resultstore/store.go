package resultstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"math/big"
	"strings"
	"time"
)

const (
	// DefaultTTL é a validade de uma entrada no backend.
	DefaultTTL = 24 * time.Hour

	// CacheControl acompanha toda resposta de sucesso: o valor de F(n) nunca muda.
	CacheControl = "public, max-age=86400, immutable"

	keyPrefix = "fib:"
)

// Store é o contrato do cache de resultados.
type Store interface {
	// Get retorna o valor decimal de F(n) se presente e não expirado.
	Get(ctx context.Context, n *big.Int) (value string, ok bool, err error)
	// Put grava ou renova a entrada incondicionalmente.
	Put(ctx context.Context, n *big.Int, value string) error
	// PutIfAbsent grava só se não houver entrada; stored indica se gravou.
	PutIfAbsent(ctx context.Context, n *big.Int, value string) (stored bool, err error)
}

// Key retorna a chave canônica de n no backend.
func Key(n *big.Int) string {
	return keyPrefix + n.String()
}

// Fingerprint é o MD5 (hex) da string decimal. Tamanho fixo, independente do valor.
func Fingerprint(value string) string {
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}

// ETag é o Fingerprint entre aspas, no formato de header HTTP.
func ETag(value string) string {
	return `"` + Fingerprint(value) + `"`
}

// MatchesIfNoneMatch diz se o header If-None-Match do cliente casa com etag.
// Aceita lista separada por vírgula, tokens com ou sem aspas, prefixo W/ e "*".
func MatchesIfNoneMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" || etag == "" {
		return false
	}
	want := unquote(etag)
	for _, part := range strings.Split(header, ",") {
		tok := strings.TrimSpace(part)
		if tok == "*" {
			return true
		}
		tok = strings.TrimPrefix(tok, "W/")
		if unquote(tok) == want {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

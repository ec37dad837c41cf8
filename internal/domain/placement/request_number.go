package placement

import (
	"fmt"
	"strconv"
)

// Números generados: prefijo AAMM + secuencia de 2 a 9 dígitos. Los de 3 o más dígitos no llevan
// ceros a la izquierda, así ordenar por longitud y luego por texto coincide con el orden numérico.
const (
	RequestSeqMinDigits = 2
	RequestSeqMaxDigits = 9
)

// GeneratedSeqPattern expresión (sin anclas ni prefijo) de la secuencia de un número generado.
const GeneratedSeqPattern = `([0-9]{2}|[1-9][0-9]{2,8})`

// IsGeneratedNumber reporta si number tiene la forma de un número generado con prefix.
// Números preferidos que solo comparten el prefijo no cuentan para la secuencia.
func IsGeneratedNumber(number, prefix string) bool {
	if len(number) <= len(prefix) || number[:len(prefix)] != prefix {
		return false
	}
	seq := number[len(prefix):]
	if len(seq) < RequestSeqMinDigits || len(seq) > RequestSeqMaxDigits {
		return false
	}
	for _, r := range seq {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(seq) == RequestSeqMinDigits || seq[0] != '0'
}

// NextRequestNumber siguiente número de la secuencia a partir del mayor existente ("" si no hay).
func NextRequestNumber(prefix, last string) (string, error) {
	if last == "" {
		return prefix + FormatIndex(1, RequestSeqMinDigits), nil
	}
	if !IsGeneratedNumber(last, prefix) {
		return "", fmt.Errorf("número %q no pertenece a la secuencia %s", last, prefix)
	}
	n, err := strconv.Atoi(last[len(prefix):])
	if err != nil {
		return "", fmt.Errorf("secuencia de %q: %w", last, err)
	}
	next := FormatIndex(n+1, RequestSeqMinDigits)
	if len(next) > RequestSeqMaxDigits {
		return "", fmt.Errorf("secuencia %s agotada", prefix)
	}
	return prefix + next, nil
}

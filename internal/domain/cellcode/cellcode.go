// Package cellcode implementa las gramáticas de los códigos de celda escaneados o tecleados.
//
//   - Compacta: "{display_id}-{bloque:2d}-{estante:2d}-{celda:3d}", ej. "001-01-01-003".
//   - Legada:   "Б{bloque}-П{estante}-Я{celda}", sin bodega; requiere la bodega de la sesión.
//
// El paquete solo reconoce la sintaxis. Resolver la bodega y validar rangos es trabajo del
// caso de uso (ver application/placement.CellCodeCodec).
package cellcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/cargo-placement/internal/domain"
)

// Grammar gramática con la que se reconoció el código.
type Grammar string

const (
	GrammarCompact Grammar = "compact"
	GrammarLegacy  Grammar = "legacy"
)

// Code resultado sintáctico. DisplayID vacío en la forma legada.
type Code struct {
	Grammar   Grammar
	DisplayID string
	Block     int
	Shelf     int
	Cell      int
}

var (
	compactRe = regexp.MustCompile(`^(\d{1,6})-(\d{1,9})-(\d{1,9})-(\d{1,9})$`)
	legacyRe  = regexp.MustCompile(`^Б(\d+)-П(\d+)-Я(\d+)$`)

	upper = cases.Upper(language.Russian)

	// Guiones que producen teclados y lectores distintos al ASCII.
	dashReplacer = strings.NewReplacer("‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "−", "-")
)

// Normalize canoniza la entrada: NFC, mayúsculas, sin espacios y con guiones ASCII.
func Normalize(raw string) string {
	s := norm.NFC.String(raw)
	s = dashReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return upper.String(s)
}

// Decode reconoce cualquiera de las dos gramáticas.
func Decode(raw string) (Code, error) {
	s := Normalize(raw)
	if m := compactRe.FindStringSubmatch(s); m != nil {
		block, shelf, cell, err := coordinates(m[2], m[3], m[4])
		if err != nil {
			return Code{}, err
		}
		return Code{Grammar: GrammarCompact, DisplayID: m[1], Block: block, Shelf: shelf, Cell: cell}, nil
	}
	if m := legacyRe.FindStringSubmatch(s); m != nil {
		block, shelf, cell, err := coordinates(m[1], m[2], m[3])
		if err != nil {
			return Code{}, err
		}
		return Code{Grammar: GrammarLegacy, Block: block, Shelf: shelf, Cell: cell}, nil
	}
	return Code{}, domain.Errorf(domain.KindUnknownFormat,
		"código de celda %q no reconocido: use 001-01-01-003 o Б1-П1-Я3", raw)
}

// Encode forma compacta canónica con componentes rellenados con ceros.
func Encode(displayID string, block, shelf, cell int) string {
	return fmt.Sprintf("%s-%02d-%02d-%03d", displayID, block, shelf, cell)
}

// EncodeLegacy forma textual legada (solo para etiquetas de compatibilidad).
func EncodeLegacy(block, shelf, cell int) string {
	return fmt.Sprintf("Б%d-П%d-Я%d", block, shelf, cell)
}

func coordinates(blockS, shelfS, cellS string) (int, int, int, error) {
	block, err := component("bloque", blockS)
	if err != nil {
		return 0, 0, 0, err
	}
	shelf, err := component("estante", shelfS)
	if err != nil {
		return 0, 0, 0, err
	}
	cell, err := component("celda", cellS)
	if err != nil {
		return 0, 0, 0, err
	}
	return block, shelf, cell, nil
}

func component(name, digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, domain.Errorf(domain.KindOutOfRange, "%s %s fuera de rango", name, digits)
	}
	if n < 1 {
		return 0, domain.Errorf(domain.KindOutOfRange, "%s %d fuera de rango (mínimo 1)", name, n)
	}
	return n, nil
}

package placement

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/cargo-placement/internal/domain"
)

// UnitID partes de un ID individual "{request_number}/{item_type_index}/{unit_index}".
type UnitID struct {
	RequestNumber string
	ItemTypeIndex string
	UnitIndex     string
}

// String arma el ID humano.
func (u UnitID) String() string {
	return u.RequestNumber + "/" + u.ItemTypeIndex + "/" + u.UnitIndex
}

// ParseUnitID separa el ID en sus tres segmentos. Un ID mal formado es NOT_FOUND con segmento "format".
func ParseUnitID(raw string) (UnitID, error) {
	s := strings.TrimSpace(raw)
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return UnitID{}, domain.NotFoundf(domain.SegmentFormat,
			"ID de unidad %q inválido: se esperaba {solicitud}/{tipo}/{unidad}", raw)
	}
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			return UnitID{}, domain.NotFoundf(domain.SegmentFormat,
				"ID de unidad %q inválido: segmento %d vacío", raw, i+1)
		}
	}
	return UnitID{
		RequestNumber: strings.TrimSpace(parts[0]),
		ItemTypeIndex: strings.TrimSpace(parts[1]),
		UnitIndex:     strings.TrimSpace(parts[2]),
	}, nil
}

// IndexWidth ancho de los índices de unidad para una cantidad: 2 dígitos mínimo ("01".."NN").
func IndexWidth(quantity int) int {
	w := len(strconv.Itoa(quantity))
	if w < 2 {
		return 2
	}
	return w
}

// FormatIndex formatea n con ceros a la izquierda al ancho dado.
func FormatIndex(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// UnitIndexes genera "01".."NN" para una cantidad declarada.
func UnitIndexes(quantity int) []string {
	width := IndexWidth(quantity)
	out := make([]string, 0, quantity)
	for i := 1; i <= quantity; i++ {
		out = append(out, FormatIndex(i, width))
	}
	return out
}

// SameIndex compara índices numéricamente ("2" == "02"); si alguno no es numérico compara texto.
func SameIndex(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}

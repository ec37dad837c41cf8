package domain

import (
	"errors"
	"fmt"
)

// Kind identifica la variante de un error de dominio. Es el "code" que ve el cliente HTTP.
type Kind string

// AddressError
const (
	KindUnknownWarehouse Kind = "UNKNOWN_WAREHOUSE"
	KindOutOfRange       Kind = "OUT_OF_RANGE"
)

// CodecError
const (
	KindUnknownFormat      Kind = "UNKNOWN_FORMAT"
	KindNoDefaultWarehouse Kind = "NO_DEFAULT_WAREHOUSE"
)

// RegistryError
const (
	KindNotFound         Kind = "NOT_FOUND"
	KindDuplicateRequest Kind = "DUPLICATE_REQUEST"
	KindAlreadyExists    Kind = "ALREADY_EXISTS"
)

// PlacementError
const (
	KindUnitAlreadyPlaced Kind = "UNIT_ALREADY_PLACED"
	KindCellOccupied      Kind = "CELL_OCCUPIED"
	KindNotPlaced         Kind = "NOT_PLACED"
)

// Genéricos.
const (
	KindValidation Kind = "VALIDATION"
	KindInternal   Kind = "INTERNAL"
)

// Category agrupa los Kind según la taxonomía de errores del motor de ubicación.
type Category string

const (
	CategoryAddress   Category = "address"
	CategoryCodec     Category = "codec"
	CategoryRegistry  Category = "registry"
	CategoryPlacement Category = "placement"
	CategoryOther     Category = "other"
)

// Segmentos de un ID individual de unidad, usados en NOT_FOUND.
const (
	SegmentFormat   = "format"
	SegmentRequest  = "request"
	SegmentItemType = "item_type"
	SegmentUnit     = "unit"
)

// Error es el error de dominio discriminado por Kind. Segment solo se usa en NOT_FOUND.
type Error struct {
	Kind    Kind
	Segment string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is compara por Kind para que errors.Is(err, domain.ErrCellOccupied) funcione con mensajes detallados.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Category devuelve la familia del error.
func (e *Error) Category() Category {
	switch e.Kind {
	case KindUnknownWarehouse, KindOutOfRange:
		return CategoryAddress
	case KindUnknownFormat, KindNoDefaultWarehouse:
		return CategoryCodec
	case KindNotFound, KindDuplicateRequest, KindAlreadyExists:
		return CategoryRegistry
	case KindUnitAlreadyPlaced, KindCellOccupied, KindNotPlaced:
		return CategoryPlacement
	default:
		return CategoryOther
	}
}

// Errores de dominio base (sin dependencias externas). Usar con errors.Is.
var (
	ErrUnknownWarehouse   = &Error{Kind: KindUnknownWarehouse, Message: "bodega desconocida"}
	ErrOutOfRange         = &Error{Kind: KindOutOfRange, Message: "coordenada fuera de rango"}
	ErrUnknownFormat      = &Error{Kind: KindUnknownFormat, Message: "formato de código de celda desconocido"}
	ErrNoDefaultWarehouse = &Error{Kind: KindNoDefaultWarehouse, Message: "no hay bodega por defecto para el código legado"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "recurso no encontrado"}
	ErrDuplicateRequest   = &Error{Kind: KindDuplicateRequest, Message: "la solicitud ya está registrada"}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists, Message: "el recurso ya existe"}
	ErrUnitAlreadyPlaced  = &Error{Kind: KindUnitAlreadyPlaced, Message: "la unidad ya está ubicada"}
	ErrCellOccupied       = &Error{Kind: KindCellOccupied, Message: "la celda está ocupada"}
	ErrNotPlaced          = &Error{Kind: KindNotPlaced, Message: "la unidad no está ubicada"}
	ErrInvalidInput       = &Error{Kind: KindValidation, Message: "entrada inválida"}
)

// Errorf construye un error de dominio del Kind indicado con un mensaje específico.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf construye un NOT_FOUND indicando qué segmento falló.
func NotFoundf(segment, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Segment: segment, Message: fmt.Sprintf(format, args...)}
}

// AsError recupera el error de dominio de la cadena; cualquier otro error se convierte en INTERNAL.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Kind: KindInternal, Message: err.Error()}
}

// KindOf devuelve el Kind del error (INTERNAL si no es de dominio, "" si err es nil).
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}

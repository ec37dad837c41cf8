package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Snowflake genera IDs int64 ordenados por tiempo para el log de ubicaciones.
// Cada réplica necesita un nodo distinto (SNOWFLAKE_NODE).
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake crea el generador para el nodo indicado (0-1023).
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", node, err)
	}
	return &Snowflake{node: n}, nil
}

// NextID siguiente ID; estrictamente creciente dentro del mismo nodo.
func (s *Snowflake) NextID() int64 {
	return s.node.Generate().Int64()
}

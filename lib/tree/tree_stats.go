package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TreeStatsName = "treex/tree"
)

type fixupOp string

const (
	opInsert fixupOp = "insert"
	opRemove fixupOp = "remove"
)

type treeStats struct {
	kindAttr    attribute.KeyValue
	insertCount metric.Int64Counter
	removeCount metric.Int64Counter
	rotateCount metric.Int64Counter
	fixupLoops  metric.Int64Counter
	nodeCount   metric.Int64UpDownCounter
}

func (stats *treeStats) recordInsert() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1, metric.WithAttributes(stats.kindAttr))
	stats.nodeCount.Add(context.Background(), 1, metric.WithAttributes(stats.kindAttr))
}

func (stats *treeStats) recordRemove() {
	if stats == nil {
		return
	}
	stats.removeCount.Add(context.Background(), 1, metric.WithAttributes(stats.kindAttr))
	stats.nodeCount.Add(context.Background(), -1, metric.WithAttributes(stats.kindAttr))
}

func (stats *treeStats) recordRelease(released int64) {
	if stats == nil || released <= 0 {
		return
	}
	stats.nodeCount.Add(context.Background(), -released, metric.WithAttributes(stats.kindAttr))
}

func (stats *treeStats) recordRotate(dir RBDirection) {
	if stats == nil {
		return
	}
	stats.rotateCount.Add(context.Background(), 1, metric.WithAttributes(
		stats.kindAttr,
		attribute.String("direction", strings.ToLower(dir.String())),
	))
}

// recordFixup adds the loop rounds of one rebalancing pass.
func (stats *treeStats) recordFixup(op fixupOp, loops int64) {
	if stats == nil {
		return
	}
	stats.fixupLoops.Add(context.Background(), loops, metric.WithAttributes(
		stats.kindAttr,
		attribute.String("op", string(op)),
	))
}

func newTreeStats(name string, kind treeKind) *treeStats {
	meterName := fmt.Sprintf("%s/%s", TreeStatsName, name)
	meter := otel.Meter(meterName)
	return &treeStats{
		kindAttr: attribute.String("kind", string(kind)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.insert.count",
			metric.WithDescription("The number of nodes inserted into the tree."),
		)),
		removeCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.remove.count",
			metric.WithDescription("The number of nodes removed from the tree."),
		)),
		rotateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.rotate.count",
			metric.WithDescription("The number of rotations done by the balancing layer."),
		)),
		fixupLoops: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"tree.fixup.loops",
			metric.WithDescription("The number of rebalancing loop rounds after insert or remove."),
		)),
		nodeCount: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"tree.node.count",
			metric.WithDescription("The number of nodes owned by the tree."),
		)),
	}
}

package silo

import (
	"testing"
	"unsafe"
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

type Health struct {
	Current int32
	Max     int32
}

type Stat struct {
	ID uint32
	V  uint32
}

type Duration struct {
	Ticks int64
}

var (
	posComp    = FactoryNewComponent[Position]()
	velComp    = FactoryNewComponent[Velocity]()
	healthComp = FactoryNewComponent[Health]()
	statComp   = FactoryNewComponent[Stat]()
	durComp    = FactoryNewComponent[Duration]()
)

// TestDefineEntityTypeCanonical tests deduplication of entity type
// definitions by component set.
func TestDefineEntityTypeCanonical(t *testing.T) {
	tests := []struct {
		name          string
		first, second []Component
		expectSameID  bool
	}{
		{
			name:         "Identical components",
			first:        []Component{posComp, velComp},
			second:       []Component{posComp, velComp},
			expectSameID: true,
		},
		{
			name:         "Different order",
			first:        []Component{posComp, velComp},
			second:       []Component{velComp, posComp},
			expectSameID: true, // entity types are sets, not tuples
		},
		{
			name:         "Different components",
			first:        []Component{posComp},
			second:       []Component{velComp},
			expectSameID: false,
		},
		{
			name:         "Subset components",
			first:        []Component{posComp, velComp},
			second:       []Component{posComp},
			expectSameID: false,
		},
		{
			name:         "Superset components",
			first:        []Component{posComp},
			second:       []Component{posComp, velComp, healthComp},
			expectSameID: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Factory.NewContext()

			id1, err := ctx.DefineEntityType(tt.first...)
			if err != nil {
				t.Fatalf("Failed to define first entity type: %v", err)
			}
			id2, err := ctx.DefineEntityType(tt.second...)
			if err != nil {
				t.Fatalf("Failed to define second entity type: %v", err)
			}

			same := id1 == id2
			if same != tt.expectSameID {
				t.Errorf("Entity type ids same: %v, expected: %v", same, tt.expectSameID)
			}
		})
	}
}

// TestDefineEntityTypeDuplicate tests rejection of duplicate components in
// one definition.
func TestDefineEntityTypeDuplicate(t *testing.T) {
	ctx := Factory.NewContext()

	_, err := ctx.DefineEntityType(posComp, velComp, posComp)
	if err == nil {
		t.Fatal("Expected duplicate component error, got nil")
	}
	if _, ok := err.(DuplicateComponentError); !ok {
		t.Errorf("Expected DuplicateComponentError, got %T", err)
	}
}

// TestPhaseGuards tests that definition operations fail after setup and
// execution operations fail before it.
func TestPhaseGuards(t *testing.T) {
	ctx := Factory.NewContext()
	typeID, err := ctx.DefineEntityType(posComp)
	if err != nil {
		t.Fatalf("Failed to define entity type: %v", err)
	}
	queryID, err := ctx.DefineQuery(posComp)
	if err != nil {
		t.Fatalf("Failed to define query: %v", err)
	}

	// Before setup: execution phase operations must refuse.
	if _, err := ctx.Create(typeID); err == nil {
		t.Error("Create before setup should fail")
	}
	if err := ctx.Destroy(Entity{}); err == nil {
		t.Error("Destroy before setup should fail")
	}
	if err := ctx.Clear(); err == nil {
		t.Error("Clear before setup should fail")
	}
	if err := ctx.RunQuery(queryID, func([]unsafe.Pointer) {}); err == nil {
		t.Error("RunQuery before setup should fail")
	}
	if _, err := Factory.NewCursor(ctx, queryID); err == nil {
		t.Error("NewCursor before setup should fail")
	}
	if ctx.IsSetup() {
		t.Error("IsSetup should be false before setup")
	}

	if err := ctx.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !ctx.IsSetup() {
		t.Error("IsSetup should be true after setup")
	}

	// After setup: definition phase operations must refuse.
	if _, err := ctx.DefineEntityType(velComp); err == nil {
		t.Error("DefineEntityType after setup should fail")
	}
	if _, err := ctx.DefineQuery(velComp); err == nil {
		t.Error("DefineQuery after setup should fail")
	}
	if err := ctx.Setup(); err == nil {
		t.Error("Second Setup should fail")
	}
}

// TestEmptyQueryRejected tests that queries over no components are a
// definition error.
func TestEmptyQueryRejected(t *testing.T) {
	ctx := Factory.NewContext()
	if _, err := ctx.DefineQuery(); err == nil {
		t.Fatal("Expected empty query error, got nil")
	}
}

// TestQueryDefinitionIdentity tests tuple-order sensitivity and
// deduplication of query definitions.
func TestQueryDefinitionIdentity(t *testing.T) {
	ctx := Factory.NewContext()

	ab, err := ctx.DefineQuery(posComp, velComp)
	if err != nil {
		t.Fatalf("Failed to define query: %v", err)
	}
	abAgain, err := ctx.DefineQuery(posComp, velComp)
	if err != nil {
		t.Fatalf("Failed to redefine query: %v", err)
	}
	ba, err := ctx.DefineQuery(velComp, posComp)
	if err != nil {
		t.Fatalf("Failed to define mirrored query: %v", err)
	}

	if ab != abAgain {
		t.Errorf("Identical tuples got distinct ids: %d vs %d", ab, abAgain)
	}
	if ab == ba {
		t.Error("Mirrored tuples should get distinct ids")
	}
}

// TestEmptyEntityType tests that component-less entity types still issue
// working handles.
func TestEmptyEntityType(t *testing.T) {
	ctx := Factory.NewContext()
	bare, err := ctx.DefineEntityType()
	if err != nil {
		t.Fatalf("Failed to define empty entity type: %v", err)
	}
	if err := ctx.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	e, err := ctx.Create(bare)
	if err != nil {
		t.Fatalf("Failed to create entity: %v", err)
	}
	if !ctx.IsAlive(e) {
		t.Error("Fresh entity should be alive")
	}
	if err := ctx.Destroy(e); err != nil {
		t.Fatalf("Failed to destroy entity: %v", err)
	}
	if ctx.IsAlive(e) {
		t.Error("Destroyed entity should not be alive")
	}
}

// TestEntityTypeComponentsSorted tests the canonical ordering exposed by
// the component iterator.
func TestEntityTypeComponentsSorted(t *testing.T) {
	ctx := Factory.NewContext()
	id, err := ctx.DefineEntityType(healthComp, posComp, velComp)
	if err != nil {
		t.Fatalf("Failed to define entity type: %v", err)
	}

	var ids []ComponentID
	for kid := range ctx.EntityTypeComponents(id) {
		ids = append(ids, kid)
	}
	if len(ids) != 3 {
		t.Fatalf("Component count = %d, want 3", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("Component ids not ascending: %v", ids)
		}
	}
}

// TestNamingTables tests the string alias registries for entity types and
// queries.
func TestNamingTables(t *testing.T) {
	ctx := Factory.NewContext()
	walker, err := ctx.DefineEntityType(posComp, velComp)
	if err != nil {
		t.Fatalf("Failed to define entity type: %v", err)
	}
	motion, err := ctx.DefineQuery(posComp, velComp)
	if err != nil {
		t.Fatalf("Failed to define query: %v", err)
	}

	if err := ctx.NameEntityType("walker", walker); err != nil {
		t.Fatalf("Failed to name entity type: %v", err)
	}
	if err := ctx.NameQuery("motion", motion); err != nil {
		t.Fatalf("Failed to name query: %v", err)
	}

	gotType, ok := ctx.EntityTypeByName("walker")
	if !ok || gotType != walker {
		t.Errorf("EntityTypeByName = (%d, %v), want (%d, true)", gotType, ok, walker)
	}
	gotQuery, ok := ctx.QueryByName("motion")
	if !ok || gotQuery != motion {
		t.Errorf("QueryByName = (%d, %v), want (%d, true)", gotQuery, ok, motion)
	}
	if _, ok := ctx.EntityTypeByName("missing"); ok {
		t.Error("Unknown name should not resolve")
	}
	if err := ctx.NameEntityType("bad", EntityTypeID(99)); err == nil {
		t.Error("Naming an unknown entity type should fail")
	}
}

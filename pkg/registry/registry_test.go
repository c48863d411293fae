package registry

import (
	"fmt"
	"testing"
)

type testItem struct {
	ID   string
	Name string
}

func TestBaseRegistry_Register(t *testing.T) {
	r := NewBaseRegistry[testItem]()

	tests := []struct {
		name    string
		key     string
		item    testItem
		wantErr bool
	}{
		{
			name:    "register valid item",
			key:     "item-1",
			item:    testItem{ID: "item-1", Name: "First"},
			wantErr: false,
		},
		{
			name:    "register with empty name",
			key:     "",
			item:    testItem{Name: "Nameless"},
			wantErr: true,
		},
		{
			name:    "register duplicate",
			key:     "item-1",
			item:    testItem{ID: "item-1", Name: "Duplicate"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.key, tt.item)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBaseRegistry_Get(t *testing.T) {
	r := NewBaseRegistry[testItem]()

	item := testItem{ID: "item-1", Name: "First"}
	if err := r.Register("item-1", item); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := r.Get("item-1")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got != item {
		t.Errorf("Get() = %v, want %v", got, item)
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestBaseRegistry_ListPreservesOrder(t *testing.T) {
	r := NewBaseRegistry[int]()

	for i := 0; i < 5; i++ {
		if err := r.Register(fmt.Sprintf("item-%d", i), i); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	list := r.List()
	if len(list) != 5 {
		t.Fatalf("List() len = %d, want 5", len(list))
	}
	for i, v := range list {
		if v != i {
			t.Errorf("List()[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestBaseRegistry_Remove(t *testing.T) {
	r := NewBaseRegistry[int]()

	if err := r.Register("a", 1); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := r.Remove("a"); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if err := r.Remove("a"); err == nil {
		t.Error("Remove() on missing item should fail")
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

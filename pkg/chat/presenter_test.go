package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/studentstore/storefront-client/pkg/api"
)

func products(n int) []api.Product {
	items := make([]api.Product, n)
	for i := range items {
		items[i] = api.Product{ID: fmt.Sprintf("pr%d", i+1)}
	}
	return items
}

func TestPresenter_SevenProductsThreeBatches(t *testing.T) {
	presenter := NewPresenter(3)
	message := presenter.AddBotMessage("results", products(7))

	batch, err := presenter.Batch(message.ID)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(batch.Products) != 3 || batch.Products[0].ID != "pr1" {
		t.Errorf("batch 0 = %v", batch.Products)
	}
	if !batch.HasMore || batch.HasPrevious {
		t.Errorf("batch 0 flags = more:%v prev:%v, want more:true prev:false", batch.HasMore, batch.HasPrevious)
	}

	batch, _ = presenter.Advance(message.ID)
	if len(batch.Products) != 3 || batch.Products[0].ID != "pr4" {
		t.Errorf("batch 1 = %v", batch.Products)
	}
	if !batch.HasMore || !batch.HasPrevious {
		t.Errorf("batch 1 flags = more:%v prev:%v, want both true", batch.HasMore, batch.HasPrevious)
	}

	batch, _ = presenter.Advance(message.ID)
	if len(batch.Products) != 1 || batch.Products[0].ID != "pr7" {
		t.Errorf("batch 2 = %v", batch.Products)
	}
	if batch.HasMore || !batch.HasPrevious {
		t.Errorf("batch 2 flags = more:%v prev:%v, want more:false prev:true", batch.HasMore, batch.HasPrevious)
	}
}

func TestPresenter_AdvanceClampsAtLastBatch(t *testing.T) {
	presenter := NewPresenter(3)
	message := presenter.AddBotMessage("results", products(4))

	presenter.Advance(message.ID) // batch 1 (last)
	batch, _ := presenter.Advance(message.ID)
	if batch.Index != 1 {
		t.Errorf("index = %d, want clamped at 1", batch.Index)
	}
}

func TestPresenter_RetreatFloorsAtZero(t *testing.T) {
	presenter := NewPresenter(3)
	message := presenter.AddBotMessage("results", products(6))

	batch, _ := presenter.Retreat(message.ID)
	if batch.Index != 0 {
		t.Errorf("index = %d, want floored at 0", batch.Index)
	}
}

func TestPresenter_AdvanceThenRetreatRestoresSlice(t *testing.T) {
	presenter := NewPresenter(3)
	message := presenter.AddBotMessage("results", products(7))

	before, _ := presenter.Batch(message.ID)
	presenter.Advance(message.ID)
	after, _ := presenter.Retreat(message.ID)

	if len(before.Products) != len(after.Products) {
		t.Fatalf("slice sizes differ: %d vs %d", len(before.Products), len(after.Products))
	}
	for i := range before.Products {
		if before.Products[i].ID != after.Products[i].ID {
			t.Errorf("products[%d] = %q, want %q", i, after.Products[i].ID, before.Products[i].ID)
		}
	}
	if before.HasMore != after.HasMore || before.HasPrevious != after.HasPrevious {
		t.Error("flags differ after advance+retreat")
	}
}

func TestPresenter_EmptyProductSet(t *testing.T) {
	presenter := NewPresenter(3)
	message := presenter.AddBotMessage("no results", nil)

	batch, err := presenter.Batch(message.ID)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(batch.Products) != 0 || batch.HasMore || batch.HasPrevious {
		t.Errorf("empty message batch = %+v", batch)
	}

	if batch, _ = presenter.Advance(message.ID); batch.Index != 0 {
		t.Errorf("Advance on empty set moved to %d", batch.Index)
	}
}

func TestPresenter_UnknownMessage(t *testing.T) {
	presenter := NewPresenter(3)

	if _, err := presenter.Advance("nope"); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("expected ErrUnknownMessage, got %v", err)
	}
}

func TestPresenter_MessagesInOrder(t *testing.T) {
	presenter := NewPresenter(3)
	presenter.AddUserMessage("hi")
	presenter.AddBotMessage("hello", nil)
	presenter.AddUserMessage("laptops?")

	messages := presenter.Messages()
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	wantRoles := []Role{RoleUser, RoleBot, RoleUser}
	for i, want := range wantRoles {
		if messages[i].Role != want {
			t.Errorf("messages[%d].Role = %q, want %q", i, messages[i].Role, want)
		}
	}
}

package guild

import (
	"context"
	"testing"
)

func TestMemoryGraphSeedsEveryoneRole(t *testing.T) {
	g := NewMemoryGraph("g1", "Test")
	roles, err := g.Roles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 1 || roles[0].Name != "@everyone" {
		t.Fatalf("roles = %+v", roles)
	}
	if g.Info().DefaultRoleID != roles[0].ID {
		t.Errorf("default role = %s", g.Info().DefaultRoleID)
	}
}

func TestMemoryGraphChannelLifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGraph("g1", "Test")

	ch, err := g.CreateChannel(ctx, CreateChannelRequest{
		Name:  "general",
		Kind:  KindText,
		Topic: "talk here",
		Overwrites: []PermissionOverwrite{
			{TargetID: g.Info().DefaultRoleID, TargetKind: TargetRole, Send: Deny},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := g.Overwrites(ch.ID); len(got) != 1 || got[0].Send != Deny {
		t.Errorf("overwrites = %+v", got)
	}

	if err := g.RenameChannel(ctx, ch.ID, "lobby"); err != nil {
		t.Fatal(err)
	}
	channels, _ := g.Channels(ctx)
	if channels[0].Name != "lobby" {
		t.Errorf("channel = %+v", channels[0])
	}

	if err := g.SendMessage(ctx, ch.ID, "hello"); err != nil {
		t.Fatal(err)
	}
	if msgs := g.Messages(ch.ID); len(msgs) != 1 || msgs[0] != "hello" {
		t.Errorf("messages = %v", msgs)
	}

	if err := g.DeleteChannel(ctx, ch.ID); err != nil {
		t.Fatal(err)
	}
	if channels, _ = g.Channels(ctx); len(channels) != 0 {
		t.Errorf("channels after delete = %+v", channels)
	}
	// operations on a deleted channel fail
	if err := g.RenameChannel(ctx, ch.ID, "x"); err == nil {
		t.Error("rename of deleted channel succeeded")
	}
}

func TestMemoryGraphDeleteCategoryOrphansChildren(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGraph("g1", "Test")

	cat, err := g.CreateCategory(ctx, "Main")
	if err != nil {
		t.Fatal(err)
	}
	ch, err := g.CreateChannel(ctx, CreateChannelRequest{Name: "chat", Kind: KindText, CategoryID: cat.ID})
	if err != nil {
		t.Fatal(err)
	}

	if err := g.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatal(err)
	}
	channels, _ := g.Channels(ctx)
	if len(channels) != 1 || channels[0].ID != ch.ID {
		t.Fatalf("channels = %+v", channels)
	}
	if channels[0].CategoryID != "" {
		t.Errorf("channel still parented: %+v", channels[0])
	}
}

func TestMemoryGraphReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGraph("g1", "Test")
	if _, err := g.CreateCategory(ctx, "Main"); err != nil {
		t.Fatal(err)
	}

	cats, _ := g.Categories(ctx)
	cats[0].Name = "mutated"

	again, _ := g.Categories(ctx)
	if again[0].Name != "Main" {
		t.Errorf("internal state mutated through read slice: %+v", again[0])
	}
}

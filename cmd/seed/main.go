package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oksasatya/vortex-feed/config"
	"github.com/oksasatya/vortex-feed/internal/domain/entity"
	repo "github.com/oksasatya/vortex-feed/internal/domain/repository"
	"github.com/oksasatya/vortex-feed/internal/infrastructure/remote"
	"github.com/oksasatya/vortex-feed/pkg/helpers"
)

const demoWallet = "DemoVortex1111111111111111111111111111111111"

var demoPosts = []string{
	"gm vortex 🌀",
	"First post from the demo wallet. Everything here is logged on devnet.",
	"Trust scores come from the moderation service; anything above 90 gets the badge.",
}

// seed registers a demo wallet on the remote API and publishes a few posts for it.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	rc := remote.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := rc.Register(ctx, repo.Registration{
		WalletAddress: demoWallet,
		Username:      "user_" + demoWallet[:8],
		DisplayName:   "Demo Vortex",
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		// the wallet is usually there from an earlier run
		log.Printf("register demo wallet: %v", err)
	}

	now := time.Now().UTC()
	for i, text := range demoPosts {
		at := now.Add(time.Duration(i-len(demoPosts)) * time.Minute)
		p := entity.Post{
			ID:         uuid.NewString(),
			Content:    text,
			Timestamp:  at,
			Author:     entity.Author{Address: demoWallet, DisplayName: "Demo Vortex"},
			TrustScore: 95,
			Verified:   true,
			Hash:       helpers.PostHash(text, "", at.UnixMilli()),
		}
		if err := rc.CreatePost(ctx, p); err != nil {
			log.Fatalf("failed to seed post %d: %v", i+1, err)
		}
		fmt.Printf("seeded post: id=%s content=%q\n", p.ID, p.Content)
	}
}

package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/memwallet/memwallet/store"
)

const feedItemLimit = 50

// GetCardsFeed renders the persona's newest cards as a feed so the user
// can follow what the wallet is learning about them. Atom by default,
// RSS with ?format=rss.
// GET /api/v1/cards/feed
func (s *APIV1Service) GetCardsFeed(c echo.Context) error {
	ctx := c.Request().Context()
	persona := s.personaOrDefault(c, "")

	cards, err := s.Store.ListCards(ctx, &store.FindCard{Persona: &persona})
	if err != nil {
		slog.Error("failed to list cards for feed", "persona", persona, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build feed"})
	}

	// ListCards returns creation order; the feed wants newest first.
	newest := make([]*store.Card, len(cards))
	copy(newest, cards)
	sort.SliceStable(newest, func(i, j int) bool {
		return newest[i].CreatedTs > newest[j].CreatedTs
	})
	if len(newest) > feedItemLimit {
		newest = newest[:feedItemLimit]
	}

	baseURL := fmt.Sprintf("%s://%s", c.Scheme(), c.Request().Host)
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Memory cards: %s", persona),
		Link:        &feeds.Link{Href: baseURL + "/api/v1/cards/feed?persona=" + persona},
		Description: fmt.Sprintf("Newest memory cards in the %s wallet", persona),
		Updated:     time.Now(),
	}
	for _, card := range newest {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          card.ID,
			Title:       feedItemTitle(card),
			Description: card.Text,
			Link:        &feeds.Link{Href: baseURL + "/api/v1/cards/" + card.ID},
			Created:     time.Unix(card.CreatedTs, 0),
			Updated:     time.Unix(card.UpdatedTs, 0),
		})
	}

	if c.QueryParam("format") == "rss" {
		rss, err := feed.ToRss()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to render feed"})
		}
		return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
	}
	atom, err := feed.ToAtom()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to render feed"})
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(atom))
}

const feedTitleLength = 60

func feedItemTitle(card *store.Card) string {
	text := card.Text
	if len(text) > feedTitleLength {
		text = text[:feedTitleLength] + "..."
	}
	return fmt.Sprintf("[%s] %s", card.Type, text)
}

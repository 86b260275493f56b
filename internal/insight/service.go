package insight

import (
	"context"

	"go.uber.org/zap"
)

// Source is anything that can list articles. *ContentfulClient in production.
type Source interface {
	Articles(ctx context.Context) ([]Article, error)
}

type Service struct {
	source Source // nil when the CMS is not configured
	logger *zap.Logger
}

func NewService(source Source, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// List returns the CMS articles, or the built-in set when the CMS fails or
// has nothing published. It never returns an empty list.
func (s *Service) List(ctx context.Context) []Article {
	if s.source == nil {
		return fallbackArticles()
	}

	articles, err := s.source.Articles(ctx)
	if err != nil {
		s.logger.Warn("serving fallback articles", zap.Error(err))
		return fallbackArticles()
	}
	if len(articles) == 0 {
		return fallbackArticles()
	}
	return articles
}

// BySlug returns the article with slug, or the first article when no slug matches.
func (s *Service) BySlug(ctx context.Context, slug string) Article {
	list := s.List(ctx)
	for _, a := range list {
		if a.Slug == slug {
			return a
		}
	}
	return list[0]
}

func img(u string) *string { return &u }

func fallbackArticles() []Article {
	return []Article{
		{
			ID: "fallback-1", Title: "How Much Sleep Do You Really Need?", Slug: "how-much-sleep-do-you-really-need",
			Author: "Alive Sleep Team", Date: "December 18, 2025", ReadTime: "5 min read",
			Tags:    []string{"Sleep Science", "Wellness"},
			Excerpt: "Recent findings indicate that 40% of people worldwide experience poor sleep, leading to weakened immune function.",
			Image:   img("https://images.unsplash.com/photo-1524504388940-b1c1722653e1?auto=format&fit=crop&w=1400&q=80"),
		},
		{
			ID: "fallback-2", Title: "The Truth About Insomnia", Slug: "the-truth-about-insomnia",
			Author: "Alive Sleep Team", Date: "November 25, 2025", ReadTime: "4 min read",
			Tags:    []string{"Sleep", "Wellness"},
			Excerpt: "With nearly 29% of the global population suffering from insomnia, understanding the root causes is vital.",
			Image:   img("https://images.unsplash.com/photo-1517245386807-bb43f82c33c4?auto=format&fit=crop&w=1400&q=80"),
		},
		{
			ID: "fallback-3", Title: "Why Your Bedtime Matters More Than You Think", Slug: "why-bedtime-matters",
			Author: "Alive Sleep Team", Date: "November 25, 2025", ReadTime: "3 min read",
			Tags:    []string{"Habits"},
			Excerpt: "Consistency builds healthier circadian rhythms and deeper sleep cycles for better recovery.",
			Image:   img("https://images.unsplash.com/photo-1505693416388-ac5ce068fe85?auto=format&fit=crop&w=1400&q=80"),
		},
		{
			ID: "fallback-4", Title: "Morning Light: The Free Sleep Aid", Slug: "morning-light",
			Author: "Alive Sleep Team", Date: "November 25, 2025", ReadTime: "4 min read",
			Tags:    []string{"Habits"},
			Excerpt: "Sunlight within an hour of waking reinforces your body clock and helps you fall asleep faster at night.",
			Image:   img("https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?auto=format&fit=crop&w=1400&q=80"),
		},
		{
			ID: "fallback-5", Title: "Small Screens, Big Impact on Sleep", Slug: "screens-and-sleep",
			Author: "Alive Sleep Team", Date: "November 25, 2025", ReadTime: "3 min read",
			Tags:    []string{"Wellness"},
			Excerpt: "Blue light and endless feeds delay melatonin. A 30-minute wind-down can transform your rest.",
			Image:   img("https://images.unsplash.com/photo-1487412720507-e7ab37603c6f?auto=format&fit=crop&w=1400&q=80"),
		},
		{
			ID: "fallback-6", Title: "Caffeine Curfew: How Late Is Too Late?", Slug: "caffeine-curfew",
			Author: "Alive Sleep Team", Date: "November 25, 2025", ReadTime: "3 min read",
			Tags:    []string{"Nutrition"},
			Excerpt: "Caffeine has a half-life of up to 6 hours. Cutting off by early afternoon protects your deep sleep.",
			Image:   img("https://images.unsplash.com/photo-1509042239860-f550ce710b93?auto=format&fit=crop&w=1400&q=80"),
		},
		{
			ID: "fallback-7", Title: "Why Short Naps Beat Long Ones", Slug: "short-naps",
			Author: "Alive Sleep Team", Date: "November 25, 2025", ReadTime: "2 min read",
			Tags:    []string{"Recovery"},
			Excerpt: "A 20-minute nap can boost alertness without the grogginess of longer daytime sleep.",
			Image:   img("https://images.unsplash.com/photo-1502741338009-cac2772e18bc?auto=format&fit=crop&w=1400&q=80"),
		},
		{
			ID: "fallback-8", Title: "Sleep and Immunity: The Crucial Link", Slug: "sleep-and-immunity",
			Author: "Alive Sleep Team", Date: "November 25, 2025", ReadTime: "4 min read",
			Tags:    []string{"Immunity"},
			Excerpt: "Even a single night of poor sleep can reduce natural killer cell activity. Protect your defense system.",
			Image:   img("https://images.unsplash.com/photo-1487412720507-e7ab37603c6f?auto=format&fit=crop&w=1400&q=80"),
		},
	}
}

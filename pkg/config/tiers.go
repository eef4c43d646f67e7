package config

import (
	"fmt"
	"sort"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
)

// BackendTierConfig はティアから具体的なモデルと API バージョンへの対応です。
type BackendTierConfig struct {
	Tier          domain.Tier
	Model         string
	APIVersion    string
	MaxReferences int
	// Fallback は失敗時に試すティアです。空ならフォールバックしません。
	Fallback domain.Tier
}

// TierRegistry はプロセス全体で共有される読み取り専用のティア表です。
// 構築後は変更されないため、並行読み取りに対して安全です。
type TierRegistry struct {
	tiers map[domain.Tier]BackendTierConfig
}

// NewTierRegistry は定義を検証してレジストリを構築します。
func NewTierRegistry(defs []BackendTierConfig) (*TierRegistry, error) {
	tiers := make(map[domain.Tier]BackendTierConfig, len(defs))
	for _, d := range defs {
		if !d.Tier.Valid() {
			return nil, fmt.Errorf("tiers: %w: %q", domain.ErrUnknownTier, d.Tier)
		}
		if _, dup := tiers[d.Tier]; dup {
			return nil, fmt.Errorf("tiers.%s: duplicated definition", d.Tier)
		}
		if d.Model == "" {
			return nil, fmt.Errorf("tiers.%s.model is required", d.Tier)
		}
		if d.APIVersion == "" {
			return nil, fmt.Errorf("tiers.%s.api_version is required", d.Tier)
		}
		if d.MaxReferences < 1 || d.MaxReferences > domain.MaxReferenceCap {
			return nil, fmt.Errorf("tiers.%s.max_references must be between 1 and %d", d.Tier, domain.MaxReferenceCap)
		}
		tiers[d.Tier] = d
	}
	for _, d := range tiers {
		if d.Fallback == "" {
			continue
		}
		if _, ok := tiers[d.Fallback]; !ok {
			return nil, fmt.Errorf("tiers.%s.fallback: %w: %q", d.Tier, domain.ErrUnknownTier, d.Fallback)
		}
	}
	return &TierRegistry{tiers: tiers}, nil
}

// TierRegistry は設定からティア表を構築します。
func (c *Config) TierRegistry() (*TierRegistry, error) {
	defs := make([]BackendTierConfig, 0, len(c.Tiers))
	for name, tc := range c.Tiers {
		tier, err := domain.ParseTier(name)
		if err != nil {
			return nil, fmt.Errorf("tiers: %w", err)
		}
		def := BackendTierConfig{
			Tier:          tier,
			Model:         tc.Model,
			APIVersion:    tc.APIVersion,
			MaxReferences: tc.MaxReferences,
		}
		if tc.Fallback != "" {
			fb, err := domain.ParseTier(tc.Fallback)
			if err != nil {
				return nil, fmt.Errorf("tiers.%s.fallback: %w", name, err)
			}
			def.Fallback = fb
		}
		defs = append(defs, def)
	}
	return NewTierRegistry(defs)
}

// Lookup はティアの定義を返します。
func (r *TierRegistry) Lookup(tier domain.Tier) (BackendTierConfig, error) {
	d, ok := r.tiers[tier]
	if !ok {
		return BackendTierConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	return d, nil
}

// FallbackFor はプライマリと異なるフォールバックティアが構成されていればそれを返します。
func (r *TierRegistry) FallbackFor(tier domain.Tier) (domain.Tier, bool) {
	d, ok := r.tiers[tier]
	if !ok || d.Fallback == "" || d.Fallback == tier {
		return "", false
	}
	return d.Fallback, true
}

// APIVersions は登録済みティアが使う API バージョンを重複なしで返します。
func (r *TierRegistry) APIVersions() []string {
	seen := make(map[string]struct{})
	var versions []string
	for _, d := range r.tiers {
		if _, ok := seen[d.APIVersion]; ok {
			continue
		}
		seen[d.APIVersion] = struct{}{}
		versions = append(versions, d.APIVersion)
	}
	sort.Strings(versions)
	return versions
}

package model

import "time"

// Article is a published or draft content item. Like bookkeeping lives in
// its own columns and is only loaded by ArticleRepository.ModifyLikes.
type Article struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Content              string         `json:"content,omitempty"`
	Slug                 string         `json:"slug"`
	PrimaryCategoryID    string         `json:"primaryCategoryId"`
	SecondaryCategoryIDs []string       `json:"secondaryCategoryIds"`
	Published            bool           `json:"published"`
	Order                int            `json:"order"`
	CoverImage           string         `json:"coverImage,omitempty"`
	ProductLinks         []ProductLink  `json:"productLinks"`
	Images               []Image        `json:"images"`
	Tags                 []string       `json:"tags"`
	Featured             bool           `json:"featured"`
	Views                int64          `json:"views"`
	LikeCount            int            `json:"likeCount"`
	PublishedAt          *time.Time     `json:"publishedAt,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	Care                 *CareInfo      `json:"care,omitempty"`
	Growing              *Growing       `json:"growing,omitempty"`
	Pests                *PestInfo      `json:"pests,omitempty"`
	Traits               *PlantTraits   `json:"traits,omitempty"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

// MarkPublished stamps PublishedAt the first time the article is published.
func (a *Article) MarkPublished(now time.Time) {
	if a.Published && a.PublishedAt == nil {
		t := now.UTC()
		a.PublishedAt = &t
	}
}

// ProductLink points readers to a product mentioned in the article.
type ProductLink struct {
	URL             string `json:"url" validate:"required,url"`
	Description     string `json:"description" validate:"required"`
	AmazonAffiliate bool   `json:"amazonAffiliate"`
}

// Image is an illustration attached to an article. StorageKey is set when the
// file lives in the service's object storage.
type Image struct {
	URL        string `json:"url" validate:"required"`
	AltText    string `json:"altText" validate:"required"`
	Primary    bool   `json:"primary"`
	StorageKey string `json:"storageKey,omitempty"`
}

// SoilPH is an acceptable soil acidity range.
type SoilPH struct {
	Min     *float64 `json:"min,omitempty" validate:"omitempty,gte=0,lte=14"`
	Max     *float64 `json:"max,omitempty" validate:"omitempty,gte=0,lte=14"`
	Optimal *float64 `json:"optimal,omitempty" validate:"omitempty,gte=0,lte=14"`
}

// CareInfo groups day-to-day care instructions.
type CareInfo struct {
	Watering    string  `json:"watering,omitempty"`
	SunExposure string  `json:"sunExposure,omitempty"`
	SoilType    string  `json:"soilType,omitempty"`
	SoilPH      *SoilPH `json:"soilPh,omitempty" validate:"omitempty"`
	Fertilizing string  `json:"fertilizing,omitempty"`
	Pruning     string  `json:"pruning,omitempty"`
	ExtraCare   string  `json:"extraCare,omitempty"`
}

// Growing describes the conditions a plant grows in.
type Growing struct {
	Hardiness        string `json:"hardiness,omitempty"`
	IdealTemperature string `json:"idealTemperature,omitempty"`
	Humidity         string `json:"humidity,omitempty"`
	GrowthRate       string `json:"growthRate,omitempty"`
	Difficulty       string `json:"difficulty,omitempty"`
	IndoorOutdoor    string `json:"indoorOutdoor,omitempty"`
}

// PestInfo lists common pests and diseases with their remedies.
type PestInfo struct {
	CommonPests    []string `json:"commonPests,omitempty"`
	CommonDiseases []string `json:"commonDiseases,omitempty"`
	Prevention     []string `json:"prevention,omitempty"`
	Treatments     []string `json:"treatments,omitempty"`
}

// PlantTraits holds the botanical flags the catalogue filters on.
type PlantTraits struct {
	Edible            bool     `json:"edible"`
	EdibleParts       []string `json:"edibleParts,omitempty"`
	ToxicToHumans     bool     `json:"toxicToHumans"`
	ToxicToAnimals    bool     `json:"toxicToAnimals"`
	Invasive          bool     `json:"invasive"`
	InvasivePotential string   `json:"invasivePotential,omitempty"`
	BloomSeason       string   `json:"bloomSeason,omitempty"`
	FlowerColors      []string `json:"flowerColors,omitempty"`
}

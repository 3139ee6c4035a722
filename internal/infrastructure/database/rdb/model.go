package rdb

import (
	"time"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
	"github.com/uptrace/bun"
)

// Region is the database model for the regions table.
type Region struct {
	bun.BaseModel `bun:"table:regions,alias:rg"`

	ID         string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Name       string    `bun:",notnull,unique,type:varchar(255)"`
	Slug       string    `bun:",notnull,unique,type:varchar(255)"`
	CreateTime time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (r *Region) ToEntity() *entity.Region {
	return &entity.Region{ID: r.ID, Name: r.Name, Slug: r.Slug, CreateTime: r.CreateTime}
}

func (r *Region) FromEntity(e *entity.Region) {
	r.ID, r.Name, r.Slug, r.CreateTime = e.ID, e.Name, e.Slug, e.CreateTime
}

// City is the database model for the cities table.
type City struct {
	bun.BaseModel `bun:"table:cities,alias:ct"`

	ID             string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Name           string    `bun:",notnull,type:varchar(255)"`
	Slug           string    `bun:",notnull,unique,type:varchar(255)"`
	RegionID       string    `bun:",notnull,type:uuid"`
	NormalizedName string    `bun:",notnull,unique,type:varchar(255)"`
	Latitude       float64   `bun:",type:double precision"`
	Longitude      float64   `bun:",type:double precision"`
	CreateTime     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (c *City) ToEntity() *entity.City {
	return &entity.City{
		ID: c.ID, Name: c.Name, Slug: c.Slug, RegionID: c.RegionID,
		NormalizedName: c.NormalizedName, Latitude: c.Latitude, Longitude: c.Longitude,
		CreateTime: c.CreateTime,
	}
}

func (c *City) FromEntity(e *entity.City) {
	c.ID, c.Name, c.Slug, c.RegionID = e.ID, e.Name, e.Slug, e.RegionID
	c.NormalizedName, c.Latitude, c.Longitude, c.CreateTime = e.NormalizedName, e.Latitude, e.Longitude, e.CreateTime
}

// CityVariant is the database model for the city_variants table.
type CityVariant struct {
	bun.BaseModel `bun:"table:city_variants,alias:cv"`

	CityID         string `bun:",notnull,type:uuid"`
	NormalizedName string `bun:",pk,type:varchar(255)"`
}

func (v *CityVariant) ToEntity() entity.CityVariant {
	return entity.CityVariant{CityID: v.CityID, NormalizedName: v.NormalizedName}
}

// Venue is the database model for the venues table.
type Venue struct {
	bun.BaseModel `bun:"table:venues,alias:vn"`

	ID         string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Name       string    `bun:",notnull,unique,type:varchar(255)"`
	Slug       string    `bun:",notnull,unique,type:varchar(255)"`
	CityID     *string   `bun:",type:uuid"`
	Latitude   *float64  `bun:",type:double precision"`
	Longitude  *float64  `bun:",type:double precision"`
	CreateTime time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdateTime time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (v *Venue) ToEntity() *entity.Venue {
	return &entity.Venue{
		ID: v.ID, Name: v.Name, Slug: v.Slug, CityID: v.CityID,
		Latitude: v.Latitude, Longitude: v.Longitude,
		CreateTime: v.CreateTime, UpdateTime: v.UpdateTime,
	}
}

func (v *Venue) FromEntity(e *entity.Venue) {
	v.ID, v.Name, v.Slug, v.CityID = e.ID, e.Name, e.Slug, e.CityID
	v.Latitude, v.Longitude = e.Latitude, e.Longitude
	v.CreateTime, v.UpdateTime = e.CreateTime, e.UpdateTime
}

// Organizer is the database model for the organizers table.
type Organizer struct {
	bun.BaseModel `bun:"table:organizers,alias:og"`

	ID         string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Name       string    `bun:",notnull,unique,type:varchar(255)"`
	Slug       string    `bun:",notnull,unique,type:varchar(255)"`
	CreateTime time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (o *Organizer) ToEntity() *entity.Organizer {
	return &entity.Organizer{ID: o.ID, Name: o.Name, Slug: o.Slug, CreateTime: o.CreateTime}
}

func (o *Organizer) FromEntity(e *entity.Organizer) {
	o.ID, o.Name, o.Slug, o.CreateTime = e.ID, e.Name, e.Slug, e.CreateTime
}

// Artist is the database model for the artists table.
type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:ar"`

	ID         string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Name       string    `bun:",notnull,unique,type:varchar(255)"`
	Slug       string    `bun:",notnull,unique,type:varchar(255)"`
	CreateTime time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (a *Artist) ToEntity() *entity.Artist {
	return &entity.Artist{ID: a.ID, Name: a.Name, Slug: a.Slug, CreateTime: a.CreateTime}
}

func (a *Artist) FromEntity(e *entity.Artist) {
	a.ID, a.Name, a.Slug, a.CreateTime = e.ID, e.Name, e.Slug, e.CreateTime
}

// Genre is the database model for the genres table.
type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:gn"`

	ID             string `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Name           string `bun:",notnull,unique,type:varchar(255)"`
	Slug           string `bun:",notnull,unique,type:varchar(255)"`
	NormalizedName string `bun:",notnull,unique,type:varchar(255)"`
}

func (g *Genre) ToEntity() *entity.Genre {
	return &entity.Genre{ID: g.ID, Name: g.Name, Slug: g.Slug}
}

// EventArtist is the join model for the event_artists table.
type EventArtist struct {
	bun.BaseModel `bun:"table:event_artists,alias:ea"`

	EventID  string `bun:",pk,type:uuid"`
	ArtistID string `bun:",pk,type:uuid"`
}

// EventGenre is the join model for the event_genres table.
type EventGenre struct {
	bun.BaseModel `bun:"table:event_genres,alias:eg"`

	EventID string `bun:",pk,type:uuid"`
	GenreID string `bun:",pk,type:uuid"`
}

// Source is the database model for the sources table.
type Source struct {
	bun.BaseModel `bun:"table:sources,alias:sc"`

	ID                 string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Name               string    `bun:",notnull,unique,type:varchar(255)"`
	Type               string    `bun:",notnull,type:varchar(32)"`
	ReliabilityScore   float64   `bun:",notnull,type:double precision"`
	HistoricalAccuracy float64   `bun:",notnull,default:0.5,type:double precision"`
	IsActive           bool      `bun:",notnull,default:true"`
	LastFetchAt        time.Time `bun:",nullzero,type:timestamptz"`
}

func (s *Source) ToEntity() *entity.Source {
	return &entity.Source{
		ID: s.ID, Name: s.Name, Type: entity.SourceType(s.Type),
		ReliabilityScore: s.ReliabilityScore, HistoricalAccuracy: s.HistoricalAccuracy,
		IsActive: s.IsActive, LastFetchAt: s.LastFetchAt,
	}
}

// EventSource is the database model for the event_sources table.
type EventSource struct {
	bun.BaseModel `bun:"table:event_sources,alias:es"`

	ID         string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	EventID    string    `bun:",notnull,type:uuid"`
	SourceID   string    `bun:",notnull,type:uuid"`
	ExternalID string    `bun:",notnull,type:varchar(512)"`
	SourceURL  string    `bun:",type:text"`
	RawPayload []byte    `bun:",type:jsonb"`
	FetchedAt  time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (e *EventSource) ToEntity() *entity.EventSource {
	return &entity.EventSource{
		ID: e.ID, EventID: e.EventID, SourceID: e.SourceID, ExternalID: e.ExternalID,
		SourceURL: e.SourceURL, RawPayload: e.RawPayload, FetchedAt: e.FetchedAt,
	}
}

func (e *EventSource) FromEntity(src *entity.EventSource) {
	e.ID, e.EventID, e.SourceID, e.ExternalID = src.ID, src.EventID, src.SourceID, src.ExternalID
	e.SourceURL, e.RawPayload, e.FetchedAt = src.SourceURL, src.RawPayload, src.FetchedAt
}

// Candidate is the database model for the candidates table.
type Candidate struct {
	bun.BaseModel `bun:"table:candidates,alias:cd"`

	ID                  string     `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	SourceID            string     `bun:",notnull,type:uuid"`
	ExternalID          string     `bun:",notnull,type:varchar(512)"`
	SourceURL           string     `bun:",type:text"`
	RawPayload          []byte     `bun:",type:jsonb"`
	NormalizedName      string     `bun:",notnull,type:varchar(512)"`
	NormalizedCityID    *string    `bun:",type:uuid"`
	StartDate           time.Time  `bun:",notnull,type:date"`
	EndDate              *time.Time `bun:",type:date"`
	NormalizedVenueName *string    `bun:",type:varchar(512)"`
	RawName             string     `bun:",notnull,type:varchar(512)"`
	RawCityText         string     `bun:",type:varchar(255)"`
	RawVenueText        string     `bun:",type:varchar(512)"`
	RawOrganizerName    string     `bun:",type:varchar(255)"`
	RawOfficialWebsite  *string    `bun:",type:text"`
	RawDescription      *string    `bun:",type:text"`
	RawEventType        string     `bun:",type:varchar(32)"`
	Processed           bool       `bun:",notnull,default:false"`
	MatchedEventID      *string    `bun:",type:uuid"`
	MatchConfidence     float64    `bun:",type:double precision"`
	IngestedAt          time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	ProcessedAt         *time.Time `bun:",type:timestamptz"`
}

func (c *Candidate) ToEntity() *entity.Candidate {
	return &entity.Candidate{
		ID: c.ID, SourceID: c.SourceID, ExternalID: c.ExternalID, SourceURL: c.SourceURL,
		RawPayload: c.RawPayload, NormalizedName: c.NormalizedName, NormalizedCityID: c.NormalizedCityID,
		StartDate: c.StartDate, EndDate: c.EndDate, NormalizedVenueName: c.NormalizedVenueName,
		RawName: c.RawName, RawCityText: c.RawCityText, RawVenueText: c.RawVenueText,
		RawOrganizerName: c.RawOrganizerName, RawOfficialWebsite: c.RawOfficialWebsite,
		RawDescription: c.RawDescription, RawEventType: entity.EventType(c.RawEventType),
		Processed: c.Processed, MatchedEventID: c.MatchedEventID, MatchConfidence: c.MatchConfidence,
		IngestedAt: c.IngestedAt, ProcessedAt: c.ProcessedAt,
	}
}

func (c *Candidate) FromEntity(e *entity.Candidate) {
	c.ID, c.SourceID, c.ExternalID, c.SourceURL = e.ID, e.SourceID, e.ExternalID, e.SourceURL
	c.RawPayload, c.NormalizedName, c.NormalizedCityID = e.RawPayload, e.NormalizedName, e.NormalizedCityID
	c.StartDate, c.EndDate, c.NormalizedVenueName = e.StartDate, e.EndDate, e.NormalizedVenueName
	c.RawName, c.RawCityText, c.RawVenueText = e.RawName, e.RawCityText, e.RawVenueText
	c.RawOrganizerName, c.RawOfficialWebsite, c.RawDescription = e.RawOrganizerName, e.RawOfficialWebsite, e.RawDescription
	c.RawEventType = string(e.RawEventType)
	c.Processed, c.MatchedEventID, c.MatchConfidence = e.Processed, e.MatchedEventID, e.MatchConfidence
	c.IngestedAt, c.ProcessedAt = e.IngestedAt, e.ProcessedAt
}

// Fingerprint is the database model for the fingerprints table.
type Fingerprint struct {
	bun.BaseModel `bun:"table:fingerprints,alias:fp"`

	ID      string `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Kind    string `bun:",notnull,type:varchar(32)"`
	Hash    string `bun:",notnull,type:varchar(64)"`
	EventID string `bun:",notnull,type:uuid"`
}

func (f *Fingerprint) ToEntity() entity.Fingerprint {
	return entity.Fingerprint{ID: f.ID, Kind: entity.FingerprintKind(f.Kind), Hash: f.Hash, EventID: f.EventID}
}

// Event is the database model for the events table.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID                    string     `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Slug                  string     `bun:",notnull,unique,type:varchar(255)"`
	Name                  string     `bun:",notnull,type:varchar(512)"`
	Type                  string     `bun:",notnull,type:varchar(32)"`
	StartDate             time.Time  `bun:",notnull,type:date"`
	EndDate               *time.Time `bun:",type:date"`
	CityID                string     `bun:",notnull,type:uuid"`
	RegionID              string     `bun:",notnull,type:uuid"`
	VenueID               *string    `bun:",type:uuid"`
	OrganizerID           *string    `bun:",type:uuid"`
	Description           *string    `bun:",type:text"`
	OfficialWebsite       *string    `bun:",type:text"`
	Status                string     `bun:",notnull,type:varchar(32)"`
	IsVerified            bool       `bun:",notnull,default:false"`
	IsPinned              bool       `bun:",notnull,default:false"`
	CulturalSignificance  int        `bun:",notnull,default:0"`
	ConfidenceScore       float64    `bun:",notnull,default:0,type:double precision"`
	CreateTime            time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	UpdateTime            time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	LastVerifiedAt        time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
}

func (e *Event) ToEntity() *entity.Event {
	return &entity.Event{
		ID: e.ID, Slug: e.Slug, Name: e.Name, Type: entity.EventType(e.Type),
		StartDate: e.StartDate, EndDate: e.EndDate, CityID: e.CityID, RegionID: e.RegionID,
		VenueID: e.VenueID, OrganizerID: e.OrganizerID, Description: e.Description,
		OfficialWebsite: e.OfficialWebsite, Status: entity.EventStatus(e.Status),
		IsVerified: e.IsVerified, IsPinned: e.IsPinned, CulturalSignificance: e.CulturalSignificance,
		ConfidenceScore: e.ConfidenceScore, CreateTime: e.CreateTime, UpdateTime: e.UpdateTime,
		LastVerifiedAt: e.LastVerifiedAt,
	}
}

func (e *Event) FromEntity(src *entity.Event) {
	e.ID, e.Slug, e.Name, e.Type = src.ID, src.Slug, src.Name, string(src.Type)
	e.StartDate, e.EndDate, e.CityID, e.RegionID = src.StartDate, src.EndDate, src.CityID, src.RegionID
	e.VenueID, e.OrganizerID, e.Description = src.VenueID, src.OrganizerID, src.Description
	e.OfficialWebsite, e.Status = src.OfficialWebsite, string(src.Status)
	e.IsVerified, e.IsPinned, e.CulturalSignificance = src.IsVerified, src.IsPinned, src.CulturalSignificance
	e.ConfidenceScore, e.CreateTime, e.UpdateTime = src.ConfidenceScore, src.CreateTime, src.UpdateTime
	e.LastVerifiedAt = src.LastVerifiedAt
}

// EventSnapshot is the database model for the event_snapshots table.
type EventSnapshot struct {
	bun.BaseModel `bun:"table:event_snapshots,alias:sn"`

	ID        string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	EventID   string    `bun:",notnull,type:uuid"`
	Snapshot  []byte    `bun:",notnull,type:jsonb"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// EditorialAction is the database model for the editorial_actions table.
type EditorialAction struct {
	bun.BaseModel `bun:"table:editorial_actions,alias:ea2"`

	ID        string    `bun:",pk,type:uuid,default:uuid_generate_v4()"`
	Type      string    `bun:",notnull,type:varchar(32)"`
	EventID   string    `bun:",notnull,type:uuid"`
	Actor     string    `bun:",notnull,type:varchar(255)"`
	Payload   []byte    `bun:",type:jsonb"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

func (a *EditorialAction) ToEntity() *entity.EditorialAction {
	return &entity.EditorialAction{
		ID: a.ID, Type: entity.EditorialActionType(a.Type), EventID: a.EventID,
		Actor: a.Actor, Payload: a.Payload, CreatedAt: a.CreatedAt,
	}
}

func (a *EditorialAction) FromEntity(e *entity.EditorialAction) {
	a.ID, a.Type, a.EventID = e.ID, string(e.Type), e.EventID
	a.Actor, a.Payload, a.CreatedAt = e.Actor, e.Payload, e.CreatedAt
}

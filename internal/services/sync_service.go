package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/virtualtourist/server/internal/flickr"
	"github.com/virtualtourist/server/internal/models"
	"github.com/virtualtourist/server/internal/observability"
	"github.com/virtualtourist/server/internal/repository"
)

const (
	otelScope            = "virtualtourist/sync"
	spanSyncCycle        = "sync.cycle"
	metricCycles         = "virtualtourist.sync.cycles"
	metricPlaceholders   = "virtualtourist.sync.placeholders.created"
	metricImagesStored   = "virtualtourist.sync.images.stored"
	metricFetchFailures  = "virtualtourist.sync.fetch.failures"
	metricDroppedWrites  = "virtualtourist.sync.writes.dropped"
	metricSearchFailures = "virtualtourist.sync.search.failures"
)

// SearchClient is the slice of the Flickr client the engine needs
type SearchClient interface {
	Search(ctx context.Context, lat, lon float64, page int) (*flickr.SearchResult, error)
}

// ImageFetcher is the slice of the image fetcher the engine needs
type ImageFetcher interface {
	Fetch(ctx context.Context, desc flickr.PhotoDescriptor) ([]byte, error)
}

// SyncService turns a remote paginated photo search into an ordered,
// incrementally populated photo collection per location.
//
// One cycle: search the location's current page, create one placeholder
// row per result (all-or-nothing, in page order), then dispatch the image
// downloads and return. Downloads trickle in afterwards and fill their
// placeholders by stable photo id, so completion order never affects
// display order. A download that lands after its photo was deleted (user
// delete or refresh) hits the store's not-found path and is dropped.
//
// Per location the engine holds: the in-memory page cursor (starts at 1,
// refresh advances it; a process restart goes back to page 1), a
// sync-in-progress guard so two cycles never interleave on one location,
// and a write mutex serializing every store mutation for that location.
// Different locations sync independently.
type SyncService struct {
	locations repository.LocationRepo
	photos    repository.PhotoRepo
	client    SearchClient
	fetcher   ImageFetcher
	images    *ImageService
	log       *observability.Logger

	mu         sync.Mutex
	pages      map[string]int
	syncing    map[string]bool
	writeLocks map[string]*sync.Mutex

	tracer            trace.Tracer
	cntCycles         metric.Int64Counter
	cntPlaceholders   metric.Int64Counter
	cntImagesStored   metric.Int64Counter
	cntFetchFailures  metric.Int64Counter
	cntDroppedWrites  metric.Int64Counter
	cntSearchFailures metric.Int64Counter
}

// NewSyncService creates the engine
func NewSyncService(
	locations repository.LocationRepo,
	photos repository.PhotoRepo,
	client SearchClient,
	fetcher ImageFetcher,
	images *ImageService,
) *SyncService {
	logger := observability.GetLogger().WithField("component", "sync")
	meter := otel.Meter(otelScope)

	mustCounter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			logger.Errorf("creating counter %s: %v", name, err)
			return noop.Int64Counter{}
		}
		return c
	}

	return &SyncService{
		locations:  locations,
		photos:     photos,
		client:     client,
		fetcher:    fetcher,
		images:     images,
		log:        logger,
		pages:      make(map[string]int),
		syncing:    make(map[string]bool),
		writeLocks: make(map[string]*sync.Mutex),

		tracer:            otel.Tracer(otelScope),
		cntCycles:         mustCounter(metricCycles, "Sync cycles run"),
		cntPlaceholders:   mustCounter(metricPlaceholders, "Placeholder photos created"),
		cntImagesStored:   mustCounter(metricImagesStored, "Downloaded images written to the store"),
		cntFetchFailures:  mustCounter(metricFetchFailures, "Image downloads that failed"),
		cntDroppedWrites:  mustCounter(metricDroppedWrites, "Image writes dropped because the photo was gone"),
		cntSearchFailures: mustCounter(metricSearchFailures, "Search calls that failed"),
	}
}

// LoadPhotos runs a sync cycle for a location that has no photos yet. If
// the collection already has photos it is a no-op success; the stored
// batch is what the gallery shows.
func (s *SyncService) LoadPhotos(ctx context.Context, locationID string) (*models.SyncResult, error) {
	location, err := s.getLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if err := s.beginSync(locationID); err != nil {
		return nil, err
	}
	defer s.endSync(locationID)

	count, err := s.photos.CountByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("counting photos: %w", err)
	}
	if count > 0 {
		return &models.SyncResult{LocationID: locationID, Page: s.currentPage(locationID), Issued: 0}, nil
	}

	return s.syncCycle(ctx, location, s.currentPage(locationID))
}

// Refresh discards the location's current batch and syncs the next page.
// The delete runs synchronously before the search; downloads still in
// flight from the old batch find their rows gone and are dropped.
func (s *SyncService) Refresh(ctx context.Context, locationID string) (*models.SyncResult, error) {
	location, err := s.getLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if err := s.beginSync(locationID); err != nil {
		return nil, err
	}
	defer s.endSync(locationID)

	lock := s.writeLock(locationID)
	lock.Lock()
	removed, err := s.photos.DeleteAllByLocation(ctx, locationID)
	lock.Unlock()
	if err != nil {
		return nil, fmt.Errorf("clearing batch: %w", err)
	}
	s.log.WithContext(ctx).Debugf("refresh cleared %d photos for location %s", removed, locationID)

	return s.syncCycle(ctx, location, s.currentPage(locationID)+1)
}

// DeletePhoto removes exactly one photo. The page cursor and the other
// photos' indices are untouched; indices stay sparse after a delete.
func (s *SyncService) DeletePhoto(ctx context.Context, photoID string) error {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return fmt.Errorf("looking up photo: %w", err)
	}
	if photo == nil {
		return models.ErrPhotoNotFound
	}

	lock := s.writeLock(photo.LocationID)
	lock.Lock()
	defer lock.Unlock()

	return s.photos.Delete(ctx, photoID)
}

// syncCycle runs one search-then-fetch-batch pass. It returns once the
// batch is issued: placeholders committed and downloads dispatched.
func (s *SyncService) syncCycle(ctx context.Context, location *models.Location, page int) (*models.SyncResult, error) {
	ctx, span := s.tracer.Start(ctx, spanSyncCycle, trace.WithAttributes(
		attribute.String("location.id", location.ID),
		attribute.Int("page", page),
	))
	defer span.End()

	s.cntCycles.Add(ctx, 1)

	result, err := s.client.Search(ctx, location.Latitude, location.Longitude, page)
	if err != nil {
		// Store untouched: the location stays in whatever state it was.
		s.cntSearchFailures.Add(ctx, 1)
		span.RecordError(err)
		s.log.WithContext(ctx).Warnf("search failed for location %s page %d: %v", location.ID, page, err)
		return nil, err
	}

	// The search answered for this page; remember the cursor even when
	// the page is empty, so refresh keeps walking forward.
	s.setPage(location.ID, page)

	if len(result.Photos) == 0 {
		s.log.WithContext(ctx).Infof("no images found for location %s page %d", location.ID, page)
		return &models.SyncResult{
			LocationID: location.ID,
			Page:       page,
			Issued:     0,
			Notice:     models.NoticeNoPhotos,
		}, nil
	}

	placeholders := make([]*models.Photo, 0, len(result.Photos))
	for i, desc := range result.Photos {
		photo, err := models.NewPlaceholder(location.ID, desc.ID, desc.Title, i)
		if err != nil {
			return nil, err
		}
		placeholders = append(placeholders, photo)
	}

	lock := s.writeLock(location.ID)
	lock.Lock()
	err = s.photos.CreatePlaceholders(ctx, placeholders)
	lock.Unlock()
	if err != nil {
		return nil, fmt.Errorf("creating placeholders: %w", err)
	}
	s.cntPlaceholders.Add(ctx, int64(len(placeholders)))
	span.SetAttributes(attribute.Int("sync.placeholders", len(placeholders)))

	// Downloads outlive the request; there is no cancellation. A stale
	// completion after a delete or refresh drops on the not-found path.
	fetchCtx := context.WithoutCancel(ctx)
	for i, desc := range result.Photos {
		go s.download(fetchCtx, location.ID, placeholders[i].ID, desc)
	}

	s.log.WithContext(ctx).Infof("issued batch of %d photos for location %s page %d",
		len(placeholders), location.ID, page)

	return &models.SyncResult{
		LocationID: location.ID,
		Page:       page,
		Issued:     len(placeholders),
	}, nil
}

// download fetches one image and writes it into its placeholder. Failures
// are local to this photo: the placeholder persists and the other
// downloads in the batch are unaffected.
func (s *SyncService) download(ctx context.Context, locationID, photoID string, desc flickr.PhotoDescriptor) {
	data, err := s.fetcher.Fetch(ctx, desc)
	if err != nil {
		s.cntFetchFailures.Add(ctx, 1)
		s.log.Warnf("download failed for photo %s (%s): %v", photoID, desc.DownloadURL(), err)
		return
	}

	processed, err := s.images.Process(data)
	if err != nil {
		s.cntFetchFailures.Add(ctx, 1)
		s.log.Warnf("discarding undecodable download for photo %s: %v", photoID, err)
		return
	}

	lock := s.writeLock(locationID)
	lock.Lock()
	err = s.photos.WriteImage(ctx, photoID, processed.Image, processed.Thumbnail, processed.TakenAt)
	lock.Unlock()

	if errors.Is(err, models.ErrPhotoNotFound) {
		// Expected race: the photo was deleted while the download was in
		// flight. The write is dropped, never resurrected.
		s.cntDroppedWrites.Add(ctx, 1)
		s.log.Debugf("dropped stale image write for photo %s", photoID)
		return
	}
	if err != nil {
		s.log.Errorf("storing image for photo %s: %v", photoID, err)
		return
	}

	s.cntImagesStored.Add(ctx, 1)
}

func (s *SyncService) getLocation(ctx context.Context, locationID string) (*models.Location, error) {
	location, err := s.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("looking up location: %w", err)
	}
	if location == nil {
		return nil, models.ErrLocationNotFound
	}
	return location, nil
}

func (s *SyncService) beginSync(locationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing[locationID] {
		return models.ErrSyncInProgress
	}
	s.syncing[locationID] = true
	return nil
}

func (s *SyncService) endSync(locationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.syncing, locationID)
}

func (s *SyncService) currentPage(locationID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page, ok := s.pages[locationID]; ok {
		return page
	}
	return 1
}

func (s *SyncService) setPage(locationID string, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[locationID] = page
}

// writeLock returns the mutex serializing store mutations for one
// location.
func (s *SyncService) writeLock(locationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.writeLocks[locationID]
	if !ok {
		lock = &sync.Mutex{}
		s.writeLocks[locationID] = lock
	}
	return lock
}

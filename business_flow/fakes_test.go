package businessflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/realtyreach/realtyreach/app/dto"
	"github.com/realtyreach/realtyreach/models"
)

// In-memory repository fakes backing the flow tests. They implement the
// conditional claim and upsert semantics the flows depend on; everything
// else is plain map bookkeeping.

var errFakeNotImplemented = errors.New("not implemented in fake")

type fakeCampaignRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Campaign

	saveErr   error
	setActive map[uint]bool
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{rows: map[uint]*models.Campaign{}, setActive: map[uint]bool{}}
}

func (r *fakeCampaignRepo) add(c *models.Campaign) *models.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	} else if c.ID > r.nextID {
		r.nextID = c.ID
	}
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	r.rows[c.ID] = c
	return c
}

func (r *fakeCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeCampaignRepo) ByUUID(ctx context.Context, uuidStr string) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.UUID.String() == uuidStr {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Campaign
	for _, c := range r.rows {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		if filter.Name != nil && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(*filter.Name)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeCampaignRepo) Save(ctx context.Context, c *models.Campaign) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.add(c)
	return nil
}

func (r *fakeCampaignRepo) SaveBatch(ctx context.Context, cs []*models.Campaign) error {
	for _, c := range cs {
		r.add(c)
	}
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeCampaignRepo) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeCampaignRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Campaign, error) {
	return r.ByFilter(ctx, models.CampaignFilter{UserID: &userID}, "", limit, offset)
}

func (r *fakeCampaignRepo) Update(ctx context.Context, c models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[c.ID]
	if !ok {
		return errors.New("campaign not found")
	}
	c.Emails = stored.Emails
	c.Templates = stored.Templates
	r.rows[c.ID] = &c
	return nil
}

func (r *fakeCampaignRepo) SetActive(ctx context.Context, id uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return errors.New("campaign not found")
	}
	c.IsActive = active
	r.setActive[id] = active
	return nil
}

func (r *fakeCampaignRepo) ReplaceEmails(ctx context.Context, campaignID uint, emails []models.CampaignEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[campaignID]
	if !ok {
		return errors.New("campaign not found")
	}
	c.Emails = emails
	return nil
}

func (r *fakeCampaignRepo) ReplaceTemplates(ctx context.Context, campaignID uint, templates []models.CampaignTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[campaignID]
	if !ok {
		return errors.New("campaign not found")
	}
	c.Templates = templates
	return nil
}

type fakeTemplateRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Template

	deleteErr error
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{rows: map[uint]*models.Template{}}
}

func (r *fakeTemplateRepo) add(t *models.Template) *models.Template {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	}
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	r.rows[t.ID] = t
	return t
}

func (r *fakeTemplateRepo) ByID(ctx context.Context, id uint) (*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeTemplateRepo) ByUUID(ctx context.Context, uuidStr string) (*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rows {
		if t.UUID.String() == uuidStr {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) ByFilter(ctx context.Context, filter models.TemplateFilter, orderBy string, limit, offset int) ([]*models.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Template
	for _, t := range r.rows {
		if filter.UserID != nil && t.UserID != *filter.UserID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeTemplateRepo) Save(ctx context.Context, t *models.Template) error {
	r.add(t)
	return nil
}

func (r *fakeTemplateRepo) SaveBatch(ctx context.Context, ts []*models.Template) error {
	for _, t := range ts {
		r.add(t)
	}
	return nil
}

func (r *fakeTemplateRepo) Count(ctx context.Context, filter models.TemplateFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeTemplateRepo) Exists(ctx context.Context, filter models.TemplateFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeTemplateRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Template, error) {
	return r.ByFilter(ctx, models.TemplateFilter{UserID: &userID}, "", limit, offset)
}

func (r *fakeTemplateRepo) Update(ctx context.Context, t models.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[t.ID]; !ok {
		return errors.New("template not found")
	}
	r.rows[t.ID] = &t
	return nil
}

func (r *fakeTemplateRepo) Delete(ctx context.Context, id uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

type fakeContactRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Contact

	statusUpdates map[uint][]models.ContactStatus
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{rows: map[uint]*models.Contact{}, statusUpdates: map[uint][]models.ContactStatus{}}
}

func (r *fakeContactRepo) add(c *models.Contact) *models.Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(c)
}

func (r *fakeContactRepo) addLocked(c *models.Contact) *models.Contact {
	if c.ID == 0 {
		r.nextID++
		c.ID = r.nextID
	}
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = models.ContactStatusPending
	}
	r.rows[c.ID] = c
	return c
}

func (r *fakeContactRepo) ByID(ctx context.Context, id uint) (*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeContactRepo) ByUUID(ctx context.Context, uuidStr string) (*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.UUID.String() == uuidStr {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeContactRepo) ByFilter(ctx context.Context, filter models.ContactFilter, orderBy string, limit, offset int) ([]*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Contact
	for _, c := range r.rows {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.CampaignID != nil && c.CampaignID != *filter.CampaignID {
			continue
		}
		if filter.ScreenName != nil && c.ScreenName != *filter.ScreenName {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeContactRepo) Save(ctx context.Context, c *models.Contact) error {
	r.add(c)
	return nil
}

func (r *fakeContactRepo) SaveBatch(ctx context.Context, cs []*models.Contact) error {
	for _, c := range cs {
		r.add(c)
	}
	return nil
}

func (r *fakeContactRepo) Count(ctx context.Context, filter models.ContactFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeContactRepo) Exists(ctx context.Context, filter models.ContactFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

// UpsertByScreenName mirrors the ON CONFLICT DO UPDATE the real repository
// issues: inserts report true, conflicting rows are updated in place and
// report false without echoing the stored ID back.
func (r *fakeContactRepo) UpsertByScreenName(ctx context.Context, contact *models.Contact) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.UserID == contact.UserID && existing.CampaignID == contact.CampaignID && existing.ScreenName == contact.ScreenName {
			existing.Name = contact.Name
			existing.Email = contact.Email
			existing.Phone = contact.Phone
			existing.AgentData = contact.AgentData
			return false, nil
		}
	}
	r.addLocked(contact)
	return true, nil
}

func (r *fakeContactRepo) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.Contact, error) {
	return r.ByFilter(ctx, models.ContactFilter{CampaignID: &campaignID}, "", limit, offset)
}

func (r *fakeContactRepo) ListPendingByCampaign(ctx context.Context, campaignID uint, limit int) ([]*models.Contact, error) {
	status := models.ContactStatusPending
	return r.ByFilter(ctx, models.ContactFilter{CampaignID: &campaignID, Status: &status}, "", limit, 0)
}

func (r *fakeContactRepo) CountByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	return r.Count(ctx, models.ContactFilter{CampaignID: &campaignID})
}

func (r *fakeContactRepo) UpdateStatus(ctx context.Context, id uint, status models.ContactStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return errors.New("contact not found")
	}
	c.Status = status
	r.statusUpdates[id] = append(r.statusUpdates[id], status)
	return nil
}

func (r *fakeContactRepo) UpdateDetails(ctx context.Context, contact models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[contact.ID]
	if !ok {
		return errors.New("contact not found")
	}
	*stored = contact
	return nil
}

type fakeListingRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{rows: map[uint]*models.Listing{}}
}

func (r *fakeListingRepo) ByID(ctx context.Context, id uint) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeListingRepo) ByFilter(ctx context.Context, filter models.ListingFilter, orderBy string, limit, offset int) ([]*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Listing
	for _, l := range r.rows {
		if filter.ContactID != nil && l.ContactID != *filter.ContactID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeListingRepo) Save(ctx context.Context, l *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == 0 {
		r.nextID++
		l.ID = r.nextID
	}
	r.rows[l.ID] = l
	return nil
}

func (r *fakeListingRepo) SaveBatch(ctx context.Context, ls []*models.Listing) error {
	for _, l := range ls {
		if err := r.Save(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeListingRepo) Count(ctx context.Context, filter models.ListingFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeListingRepo) Exists(ctx context.Context, filter models.ListingFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeListingRepo) UpsertByZpid(ctx context.Context, listing *models.Listing) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.ContactID == listing.ContactID && existing.Zpid == listing.Zpid {
			*existing = *listing
			return false, nil
		}
	}
	r.nextID++
	listing.ID = r.nextID
	r.rows[listing.ID] = listing
	return true, nil
}

func (r *fakeListingRepo) ListByContact(ctx context.Context, contactID uint) ([]*models.Listing, error) {
	return r.ByFilter(ctx, models.ListingFilter{ContactID: &contactID}, "", 0, 0)
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.OutboxEmail

	claimErr   error
	requeueCut time.Time
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{rows: map[uint]*models.OutboxEmail{}}
}

func (r *fakeOutboxRepo) add(e *models.OutboxEmail) *models.OutboxEmail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(e)
}

func (r *fakeOutboxRepo) addLocked(e *models.OutboxEmail) *models.OutboxEmail {
	if e.ID == 0 {
		r.nextID++
		e.ID = r.nextID
	}
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	if e.Status == "" {
		e.Status = models.OutboxStatusPending
	}
	r.rows[e.ID] = e
	return e
}

func (r *fakeOutboxRepo) ByID(ctx context.Context, id uint) (*models.OutboxEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeOutboxRepo) ByFilter(ctx context.Context, filter models.OutboxEmailFilter, orderBy string, limit, offset int) ([]*models.OutboxEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.OutboxEmail
	for _, e := range r.rows {
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.CampaignID != nil && e.CampaignID != *filter.CampaignID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeOutboxRepo) Save(ctx context.Context, e *models.OutboxEmail) error {
	r.add(e)
	return nil
}

func (r *fakeOutboxRepo) SaveBatch(ctx context.Context, es []*models.OutboxEmail) error {
	for _, e := range es {
		r.add(e)
	}
	return nil
}

func (r *fakeOutboxRepo) Count(ctx context.Context, filter models.OutboxEmailFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeOutboxRepo) Exists(ctx context.Context, filter models.OutboxEmailFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeOutboxRepo) ListPending(ctx context.Context, userID uuid.UUID, limit int) ([]*models.OutboxEmail, error) {
	status := models.OutboxStatusPending
	return r.ByFilter(ctx, models.OutboxEmailFilter{UserID: &userID, Status: &status}, "", limit, 0)
}

func (r *fakeOutboxRepo) ClaimSending(ctx context.Context, id uint) (bool, error) {
	if r.claimErr != nil {
		return false, r.claimErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok || e.Status != models.OutboxStatusPending {
		return false, nil
	}
	e.Status = models.OutboxStatusSending
	return true, nil
}

func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, id uint, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return errors.New("outbox email not found")
	}
	e.Status = models.OutboxStatusFailed
	e.ErrorMessage = errorMessage
	return nil
}

func (r *fakeOutboxRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeOutboxRepo) RequeueStaleSending(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requeueCut = olderThan
	var n int64
	for _, e := range r.rows {
		if e.Status == models.OutboxStatusSending && e.CreatedAt.Before(olderThan) {
			e.Status = models.OutboxStatusPending
			n++
		}
	}
	return n, nil
}

type fakeSentRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.SentEmail

	saveErr error
}

func newFakeSentRepo() *fakeSentRepo {
	return &fakeSentRepo{rows: map[uint]*models.SentEmail{}}
}

func (r *fakeSentRepo) ByID(ctx context.Context, id uint) (*models.SentEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeSentRepo) ByFilter(ctx context.Context, filter models.SentEmailFilter, orderBy string, limit, offset int) ([]*models.SentEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SentEmail
	for _, e := range r.rows {
		if filter.CampaignID != nil && e.CampaignID != *filter.CampaignID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeSentRepo) Save(ctx context.Context, e *models.SentEmail) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == 0 {
		r.nextID++
		e.ID = r.nextID
	}
	r.rows[e.ID] = e
	return nil
}

func (r *fakeSentRepo) SaveBatch(ctx context.Context, es []*models.SentEmail) error {
	for _, e := range es {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSentRepo) Count(ctx context.Context, filter models.SentEmailFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeSentRepo) Exists(ctx context.Context, filter models.SentEmailFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeSentRepo) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.SentEmail, error) {
	return r.ByFilter(ctx, models.SentEmailFilter{CampaignID: &campaignID}, "", limit, offset)
}

func (r *fakeSentRepo) CountByCampaign(ctx context.Context, campaignID uint) (int64, error) {
	return r.Count(ctx, models.SentEmailFilter{CampaignID: &campaignID})
}

type fakeJobRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{rows: map[uint]*models.Job{}}
}

func (r *fakeJobRepo) add(j *models.Job) *models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == 0 {
		r.nextID++
		j.ID = r.nextID
	}
	if j.UUID == uuid.Nil {
		j.UUID = uuid.New()
	}
	if j.Status == "" {
		j.Status = models.JobStatusPending
	}
	r.rows[j.ID] = j
	return j
}

func (r *fakeJobRepo) ByID(ctx context.Context, id uint) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeJobRepo) ByUUID(ctx context.Context, uuidStr string) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.rows {
		if j.UUID.String() == uuidStr {
			return j, nil
		}
	}
	return nil, nil
}

func (r *fakeJobRepo) ByFilter(ctx context.Context, filter models.JobFilter, orderBy string, limit, offset int) ([]*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Job
	for _, j := range r.rows {
		if filter.UserID != nil && j.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && j.Type != *filter.Type {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), nil
}

func (r *fakeJobRepo) Save(ctx context.Context, j *models.Job) error {
	r.add(j)
	return nil
}

func (r *fakeJobRepo) SaveBatch(ctx context.Context, js []*models.Job) error {
	for _, j := range js {
		r.add(j)
	}
	return nil
}

func (r *fakeJobRepo) Count(ctx context.Context, filter models.JobFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeJobRepo) Exists(ctx context.Context, filter models.JobFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *fakeJobRepo) ListPending(ctx context.Context, limit int) ([]*models.Job, error) {
	status := models.JobStatusPending
	return r.ByFilter(ctx, models.JobFilter{Status: &status}, "", limit, 0)
}

func (r *fakeJobRepo) ClaimProcessing(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.rows[id]
	if !ok || j.Status != models.JobStatusPending {
		return false, nil
	}
	j.Status = models.JobStatusProcessing
	return true, nil
}

func (r *fakeJobRepo) MarkCompleted(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.rows[id]
	if !ok {
		return errors.New("job not found")
	}
	j.Status = models.JobStatusCompleted
	return nil
}

func (r *fakeJobRepo) MarkFailed(ctx context.Context, id uint, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.rows[id]
	if !ok {
		return errors.New("job not found")
	}
	j.Status = models.JobStatusFailed
	j.ErrorMessage = errorMessage
	return nil
}

func (r *fakeJobRepo) RequeueStaleProcessing(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, j := range r.rows {
		if j.Status == models.JobStatusProcessing && j.CreatedAt.Before(olderThan) {
			j.Status = models.JobStatusPending
			n++
		}
	}
	return n, nil
}

type fakeSettingsRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.RapidAPISettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{rows: map[uuid.UUID]*models.RapidAPISettings{}}
}

func (r *fakeSettingsRepo) ByID(ctx context.Context, id uint) (*models.RapidAPISettings, error) {
	return nil, errFakeNotImplemented
}

func (r *fakeSettingsRepo) ByFilter(ctx context.Context, filter models.RapidAPISettingsFilter, orderBy string, limit, offset int) ([]*models.RapidAPISettings, error) {
	return nil, errFakeNotImplemented
}

func (r *fakeSettingsRepo) Save(ctx context.Context, s *models.RapidAPISettings) error {
	return r.Upsert(ctx, s)
}

func (r *fakeSettingsRepo) SaveBatch(ctx context.Context, ss []*models.RapidAPISettings) error {
	return errFakeNotImplemented
}

func (r *fakeSettingsRepo) Count(ctx context.Context, filter models.RapidAPISettingsFilter) (int64, error) {
	return 0, errFakeNotImplemented
}

func (r *fakeSettingsRepo) Exists(ctx context.Context, filter models.RapidAPISettingsFilter) (bool, error) {
	return false, errFakeNotImplemented
}

func (r *fakeSettingsRepo) ByUserID(ctx context.Context, userID uuid.UUID) (*models.RapidAPISettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[userID], nil
}

func (r *fakeSettingsRepo) Upsert(ctx context.Context, settings *models.RapidAPISettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[settings.UserID] = settings
	return nil
}

// stubScrapeFlow stands in for the scraper when testing flows that only
// trigger it as a side effect.
type stubScrapeFlow struct {
	resp  *dto.ScrapeAgentsResponse
	err   error
	calls int
}

func (s *stubScrapeFlow) ScrapeAgents(ctx context.Context, req *dto.ScrapeAgentsRequest, metadata *ClientMetadata) (*dto.ScrapeAgentsResponse, error) {
	s.calls++
	return s.resp, s.err
}

func (s *stubScrapeFlow) FetchAgentDetails(ctx context.Context, req *dto.FetchAgentDetailsRequest) (*dto.FetchAgentDetailsResponse, error) {
	return nil, errFakeNotImplemented
}

func paginate[T any](rows []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

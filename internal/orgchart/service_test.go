package orgchart_test

import (
	"context"
	"errors"
	"sync"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/core/events"
	"github.com/frahmantamala/salesdesk/internal/orgchart"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// failingStore fails every transaction with a storage error.
type failingStore struct {
	orgchart.Store
	err error
}

func (s failingStore) WithinTx(context.Context, func(context.Context, orgchart.UserRepository, orgchart.AuditRepository) error) error {
	return s.err
}

var _ = Describe("Service", func() {
	var (
		store     orgchart.Store
		publisher *recordingPublisher
		service   *orgchart.Service
		ctx       context.Context
	)

	BeforeEach(func() {
		store = newSQLiteStore()
		publisher = &recordingPublisher{}
		service = orgchart.NewService(store, publisher, quietLogger(), testOptions())
		ctx = tenantCtx("acme")

		_, err := service.Seed(ctx, chain())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should require a tenant in the context", func() {
		_, err := service.ListUsers(context.Background())
		Expect(err).To(MatchError(internal.ErrMissingTenant))

		_, err = service.QuickAdd(context.Background(), orgchart.RoleIT)
		Expect(err).To(MatchError(internal.ErrMissingTenant))
	})

	It("should list seeded users in list order with one CREATE entry each", func() {
		users, err := service.ListUsers(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(users)).To(Equal([]string{"a", "b", "c"}))

		logs, err := service.AuditLogs(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs).To(HaveLen(3))
		Expect(logs[0].Details).To(Equal("Created First-c Last-c (User) reporting to First-b Last-b"))
		Expect(logs[2].Details).To(Equal("Created First-a Last-a (User) reporting to System Root"))
	})

	It("should build the tree from storage", func() {
		forest, err := service.Tree(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(forest).To(HaveLen(1))
		Expect(forest[0].Children[0].Children[0].User.ID).To(Equal("c"))
	})

	It("should keep tenants apart", func() {
		other := tenantCtx("globex")
		users, err := service.ListUsers(other)
		Expect(err).NotTo(HaveOccurred())
		Expect(users).To(BeEmpty())

		res, err := service.QuickAdd(other, orgchart.RoleIT)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.User.ParentID).To(BeNil())
		Expect(res.User.TenantID).To(Equal("globex"))

		users, err = service.ListUsers(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(users).To(HaveLen(3))
	})

	Describe("Move", func() {
		It("should reject a cycle, persist nothing and publish a rejection", func() {
			_, err := service.Move(ctx, "a", ptr("c"))
			Expect(err).To(MatchError(internal.ErrInvalidHierarchyMove))

			users, err := service.ListUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users[0].ParentID).To(BeNil())

			logs, err := service.AuditLogs(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(3))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeOrgMoveBlocked}))
		})

		It("should persist a move to root and its audit entry", func() {
			res, err := service.Move(ctx, "c", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Entry.Action).To(Equal(orgchart.ActionMove))

			roots := orgchart.Roots(mustList(service, ctx))
			Expect(ids(roots)).To(Equal([]string{"a", "c"}))

			logs, err := service.AuditLogs(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Action).To(Equal(orgchart.ActionMove))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeOrgUserMoved}))
		})

		It("should ignore a self drop without touching storage", func() {
			res, err := service.Drop(ctx, map[string]string{orgchart.DragDataKey: "b"}, ptr("b"))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ignored).To(BeTrue())
			Expect(publisher.types()).To(BeEmpty())
		})

		It("should apply a drop onto another user", func() {
			res, err := service.Drop(ctx, map[string]string{orgchart.DragDataKey: "c"}, ptr("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(*res.User.ParentID).To(Equal("a"))
		})
	})

	It("should promote direct reports when deleting", func() {
		res, err := service.Delete(ctx, "b")
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(res.Promoted)).To(Equal([]string{"c"}))

		users := mustList(service, ctx)
		Expect(ids(users)).To(Equal([]string{"a", "c"}))
		Expect(users[1].ParentID).To(BeNil())

		logs, err := service.AuditLogs(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs[0].Action).To(Equal(orgchart.ActionDelete))
		Expect(publisher.types()).To(Equal([]string{events.EventTypeOrgUserDeleted}))
	})

	It("should quick-add under the first user and append to the list", func() {
		res, err := service.QuickAdd(ctx, orgchart.RoleIT)
		Expect(err).NotTo(HaveOccurred())
		Expect(*res.User.ParentID).To(Equal("a"))
		Expect(res.OpenEditor).To(BeTrue())

		users := mustList(service, ctx)
		Expect(users).To(HaveLen(4))
		Expect(users[3].ID).To(Equal(res.User.ID))
		Expect(users[3].Permissions).To(Equal(orgchart.RoleIT))
	})

	Describe("Save", func() {
		It("should log name changes but not contact changes", func() {
			u := mustList(service, ctx)[1]
			u.Email = "b@acme.test"
			res, err := service.Save(ctx, u)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Entry).To(BeNil())

			u.LastName = "Baker"
			res, err = service.Save(ctx, u)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Entry).NotTo(BeNil())

			logs, err := service.AuditLogs(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs).To(HaveLen(4))
			Expect(logs[0].Action).To(Equal(orgchart.ActionUpdate))

			stored := mustList(service, ctx)[1]
			Expect(stored.Email).To(Equal("b@acme.test"))
			Expect(stored.LastName).To(Equal("Baker"))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeOrgUserUpdated, events.EventTypeOrgUserUpdated}))
		})

		It("should scope ids to the tenant", func() {
			other := tenantCtx("globex")
			res, err := service.Save(other, orgchart.User{ID: "a", FirstName: "Gale", Permissions: orgchart.RoleUser})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Created).To(BeTrue())
			Expect(res.User.TenantID).To(Equal("globex"))

			_, err = service.Delete(other, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(mustList(service, ctx))).To(Equal([]string{"a", "b", "c"}))
			Expect(mustList(service, ctx)[0].FirstName).To(Equal("First-a"))
		})

		It("should seed the same ids into a second tenant", func() {
			other := tenantCtx("globex")
			seeded, err := service.Seed(other, chain())
			Expect(err).NotTo(HaveOccurred())
			Expect(seeded).To(HaveLen(3))

			_, err = service.Move(other, "c", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(mustList(service, ctx)[2].ParentID).To(HaveValue(Equal("b")))
			Expect(mustList(service, other)[2].ParentID).To(BeNil())
		})

		It("should create a user for a new id", func() {
			res, err := service.Save(ctx, orgchart.User{ID: "d", FirstName: "Dee", Permissions: orgchart.RoleDirector, ParentID: ptr("b")})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Created).To(BeTrue())
			Expect(ids(mustList(service, ctx))).To(Equal([]string{"a", "b", "c", "d"}))
			Expect(publisher.types()).To(Equal([]string{events.EventTypeOrgUserCreated}))
		})
	})

	It("should clear a tenant", func() {
		Expect(service.Clear(ctx)).To(Succeed())
		Expect(mustList(service, ctx)).To(BeEmpty())
		logs, err := service.AuditLogs(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs).To(BeEmpty())
	})

	It("should hide storage failures behind an internal error", func() {
		broken := orgchart.NewService(failingStore{Store: store, err: errors.New("disk full")}, publisher, quietLogger(), testOptions())

		_, err := broken.Move(ctx, "c", nil)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(500))
		Expect(publisher.types()).To(BeEmpty())
	})
})

func mustList(service *orgchart.Service, ctx context.Context) []orgchart.User {
	users, err := service.ListUsers(ctx)
	Expect(err).NotTo(HaveOccurred())
	return users
}

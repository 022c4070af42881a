package orgchart_test

import (
	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/orgchart"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Editor", func() {
	var (
		editor      *orgchart.Editor
		userUpdates [][]orgchart.User
		logUpdates  [][]orgchart.AuditEntry
	)

	newEditor := func(users []orgchart.User) *orgchart.Editor {
		opts := testOptions()
		opts.OnUpdateUsers = func(u []orgchart.User) { userUpdates = append(userUpdates, u) }
		opts.OnUpdateLogs = func(l []orgchart.AuditEntry) { logUpdates = append(logUpdates, l) }
		return orgchart.NewEditor("acme", users, nil, opts)
	}

	BeforeEach(func() {
		userUpdates = nil
		logUpdates = nil
		editor = newEditor(chain())
	})

	Describe("Move", func() {
		It("should reject moving a user under its own descendant and leave the list unchanged", func() {
			before := editor.Users()

			_, err := editor.Move("a", ptr("c"))

			Expect(err).To(MatchError(internal.ErrInvalidHierarchyMove))
			Expect(err.Error()).To(Equal("Invalid move: a user cannot report to one of their own subordinates"))
			Expect(editor.Users()).To(Equal(before))
			Expect(editor.AuditLog()).To(BeEmpty())
			Expect(userUpdates).To(BeEmpty())
			Expect(logUpdates).To(BeEmpty())
		})

		It("should reject a direct descendant as well as a transitive one", func() {
			_, err := editor.Move("a", ptr("b"))
			Expect(err).To(MatchError(internal.ErrInvalidHierarchyMove))
		})

		It("should reject moving a user under itself", func() {
			_, err := editor.Move("b", ptr("b"))
			Expect(err).To(MatchError(internal.ErrInvalidHierarchyMove))
		})

		It("should move a user to root and log the move", func() {
			res, err := editor.Move("c", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.User.ParentID).To(BeNil())
			Expect(ids(orgchart.Roots(editor.Users()))).To(Equal([]string{"a", "c"}))

			logs := editor.AuditLog()
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Action).To(Equal(orgchart.ActionMove))
			Expect(logs[0].Details).To(Equal("Moved First-c Last-c from reporting to First-b Last-b to reporting to System Root"))
			Expect(logs[0].TenantID).To(Equal("acme"))
		})

		It("should always allow moving a root to root", func() {
			res, err := editor.Move("a", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.User.ParentID).To(BeNil())
		})

		It("should move a user under a non-descendant", func() {
			res, err := editor.Move("c", ptr("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(*res.User.ParentID).To(Equal("a"))
			Expect(ids(orgchart.Children(editor.Users(), "a"))).To(ConsistOf("b", "c"))
			Expect(userUpdates).To(HaveLen(1))
			Expect(logUpdates).To(HaveLen(1))
		})

		It("should fail for unknown users and unknown targets", func() {
			_, err := editor.Move("ghost", nil)
			Expect(err).To(MatchError(internal.ErrUserNotFound))

			_, err = editor.Move("c", ptr("ghost"))
			Expect(err).To(MatchError(internal.ErrParentNotFound))
		})
	})

	Describe("Drop", func() {
		It("should ignore a drop onto the dragged node", func() {
			res, err := editor.Drop(map[string]string{orgchart.DragDataKey: "b"}, ptr("b"))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ignored).To(BeTrue())
			Expect(editor.AuditLog()).To(BeEmpty())
		})

		It("should ignore a drop without a dragged id", func() {
			res, err := editor.Drop(map[string]string{}, ptr("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ignored).To(BeTrue())
		})

		It("should move the dragged user onto the target", func() {
			res, err := editor.Drop(map[string]string{orgchart.DragDataKey: "c"}, ptr("a"))
			Expect(err).NotTo(HaveOccurred())
			Expect(*res.User.ParentID).To(Equal("a"))
		})

		It("should surface cycle rejection", func() {
			_, err := editor.Drop(map[string]string{orgchart.DragDataKey: "a"}, ptr("c"))
			Expect(err).To(MatchError(internal.ErrInvalidHierarchyMove))
		})
	})

	Describe("Delete", func() {
		It("should remove the user and promote its direct reports to root", func() {
			res, err := editor.Delete("b")
			Expect(err).NotTo(HaveOccurred())

			users := editor.Users()
			Expect(ids(users)).To(Equal([]string{"a", "c"}))
			Expect(users[1].ParentID).To(BeNil())
			Expect(ids(res.Promoted)).To(Equal([]string{"c"}))

			logs := editor.AuditLog()
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Action).To(Equal(orgchart.ActionDelete))
			Expect(logs[0].Details).To(Equal("Deleted First-b Last-b (User)"))
		})

		It("should fail for an unknown id", func() {
			_, err := editor.Delete("ghost")
			Expect(err).To(MatchError(internal.ErrUserNotFound))
			Expect(userUpdates).To(BeEmpty())
		})
	})

	Describe("QuickAdd", func() {
		It("should create a root user on an empty list and open the editor", func() {
			editor = newEditor(nil)

			res, err := editor.QuickAdd(orgchart.RoleIT)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.User.ParentID).To(BeNil())
			Expect(res.User.Permissions).To(Equal(orgchart.RoleIT))
			Expect(res.User.TenantID).To(Equal("acme"))
			Expect(res.OpenEditor).To(BeTrue())
			Expect(res.Created).To(BeTrue())

			logs := editor.AuditLog()
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Action).To(Equal(orgchart.ActionCreate))
			Expect(logs[0].Details).To(Equal("Created Unnamed User (IT) reporting to System Root"))
		})

		It("should parent the new user under the first user of the list", func() {
			editor = newEditor([]orgchart.User{user("c", ptr("b")), user("b", nil)})

			res, err := editor.QuickAdd(orgchart.RoleMarketing)
			Expect(err).NotTo(HaveOccurred())
			Expect(*res.User.ParentID).To(Equal("c"))
			Expect(ids(editor.Users())).To(Equal([]string{"c", "b", res.User.ID}))
		})

		It("should reject an unknown role", func() {
			_, err := editor.QuickAdd(orgchart.Role("CEO"))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
			Expect(editor.Users()).To(HaveLen(3))
		})
	})

	Describe("Save", func() {
		It("should log exactly one UPDATE when names or role change", func() {
			u := editor.Users()[1]
			u.FirstName = "Bea"
			u.Permissions = orgchart.RoleManager

			res, err := editor.Save(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Entry).NotTo(BeNil())

			logs := editor.AuditLog()
			Expect(logs).To(HaveLen(1))
			Expect(logs[0].Action).To(Equal(orgchart.ActionUpdate))
			Expect(logs[0].Details).To(Equal(`Updated First-b Last-b: first name "First-b" -> "Bea", role User -> Manager`))
		})

		It("should apply email and phone changes without logging", func() {
			u := editor.Users()[1]
			u.Email = "b@acme.test"
			u.Phone = "+1 555 0100"

			res, err := editor.Save(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Entry).To(BeNil())
			Expect(editor.AuditLog()).To(BeEmpty())
			Expect(editor.Users()[1].Email).To(Equal("b@acme.test"))
			Expect(userUpdates).To(HaveLen(1))
		})

		It("should keep the reporting line of an existing user", func() {
			u := editor.Users()[2]
			u.ParentID = nil

			res, err := editor.Save(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(*res.User.ParentID).To(Equal("b"))
		})

		It("should create a user for an unknown id", func() {
			res, err := editor.Save(orgchart.User{ID: "d", FirstName: "Dee", Permissions: orgchart.RoleVP, ParentID: ptr("a")})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Created).To(BeTrue())
			Expect(res.OpenEditor).To(BeFalse())
			Expect(editor.AuditLog()[0].Details).To(Equal("Created Dee (VP) reporting to First-a Last-a"))
			Expect(ids(editor.Users())).To(Equal([]string{"a", "b", "c", "d"}))
		})

		It("should refuse to create under an unknown parent", func() {
			_, err := editor.Save(orgchart.User{ID: "d", Permissions: orgchart.RoleVP, ParentID: ptr("ghost")})
			Expect(err).To(MatchError(internal.ErrParentNotFound))
		})
	})

	Describe("Audit log", func() {
		It("should keep the most recent entry first", func() {
			_, err := editor.Move("c", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = editor.QuickAdd(orgchart.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())
			_, err = editor.Delete("b")
			Expect(err).NotTo(HaveOccurred())

			logs := editor.AuditLog()
			Expect(logs).To(HaveLen(3))
			Expect(logs[0].Action).To(Equal(orgchart.ActionDelete))
			Expect(logs[1].Action).To(Equal(orgchart.ActionCreate))
			Expect(logs[2].Action).To(Equal(orgchart.ActionMove))

			Expect(logUpdates).To(HaveLen(3))
			Expect(logUpdates[2]).To(Equal(logs))
		})

		It("should format timestamps with the configured layout", func() {
			_, err := editor.Move("c", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(editor.AuditLog()[0].Timestamp).To(MatchRegexp(`^2024-03-01 09:00:\d\d$`))
		})
	})

	It("should not share state with the caller's slice", func() {
		users := chain()
		e := orgchart.NewEditor("acme", users, nil, testOptions())
		_, err := e.Move("c", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(*users[2].ParentID).To(Equal("b"))
	})
})

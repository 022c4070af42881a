package orgchart_test

import (
	"bytes"

	"github.com/frahmantamala/salesdesk/internal/orgchart"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tree traversal", func() {
	var users []orgchart.User

	BeforeEach(func() {
		users = []orgchart.User{
			user("r1", nil),
			user("x", ptr("r1")),
			user("r2", nil),
			user("y", ptr("r1")),
			user("z", ptr("x")),
		}
	})

	It("should return every parentless user exactly once, in list order", func() {
		Expect(ids(orgchart.Roots(users))).To(Equal([]string{"r1", "r2"}))
	})

	It("should return direct reports in list order", func() {
		Expect(ids(orgchart.Children(users, "r1"))).To(Equal([]string{"x", "y"}))
		Expect(ids(orgchart.Children(users, "x"))).To(Equal([]string{"z"}))
		Expect(orgchart.Children(users, "z")).To(BeEmpty())
	})

	It("should render each user's children as exactly the users pointing at it", func() {
		forest := orgchart.BuildForest(users)
		Expect(forest).To(HaveLen(2))

		var walk func(nodes []orgchart.Node)
		walk = func(nodes []orgchart.Node) {
			for _, n := range nodes {
				rendered := make([]orgchart.User, len(n.Children))
				for i, c := range n.Children {
					rendered[i] = c.User
				}
				Expect(ids(rendered)).To(Equal(ids(orgchart.Children(users, n.User.ID))))
				walk(n.Children)
			}
		}
		walk(forest)
	})

	It("should assign levels by depth", func() {
		forest := orgchart.BuildForest(users)
		Expect(forest[0].Level).To(Equal(0))
		Expect(forest[0].Children[0].Level).To(Equal(1))
		Expect(forest[0].Children[0].Children[0].User.ID).To(Equal("z"))
		Expect(forest[0].Children[0].Children[0].Level).To(Equal(2))
	})

	It("should return an empty forest for an empty list", func() {
		forest := orgchart.BuildForest(nil)
		Expect(forest).NotTo(BeNil())
		Expect(forest).To(BeEmpty())
	})

	It("should render an indented outline", func() {
		var buf bytes.Buffer
		Expect(orgchart.RenderTree(&buf, orgchart.BuildForest(chain()))).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("- First-a Last-a [User]"))
		Expect(out).To(ContainSubstring("\n  - First-b Last-b [User]"))
		Expect(out).To(ContainSubstring("\n    - First-c Last-c [User]"))
	})
})

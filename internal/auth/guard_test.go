package auth_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal "github.com/tomoyasu-sasaki/SmartNippo-sub000/internal"
	"github.com/tomoyasu-sasaki/SmartNippo-sub000/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

var _ = Describe("Role", func() {
	It("ranks member below manager below admin", func() {
		Expect(auth.RoleMember.Rank()).To(BeNumerically("<", auth.RoleManager.Rank()))
		Expect(auth.RoleManager.Rank()).To(BeNumerically("<", auth.RoleAdmin.Rank()))
	})

	It("treats unknown role strings as rank zero", func() {
		Expect(auth.ParseRole("superuser")).To(Equal(auth.RoleInvalid))
		Expect(auth.ParseRole("superuser").Valid()).To(BeFalse())
		Expect(auth.ParseRole("superuser").AtLeast(auth.RoleMember)).To(BeFalse())
	})

	It("parses the three known roles unchanged", func() {
		Expect(auth.ParseRole("member")).To(Equal(auth.RoleMember))
		Expect(auth.ParseRole("manager")).To(Equal(auth.RoleManager))
		Expect(auth.ParseRole("admin")).To(Equal(auth.RoleAdmin))
	})

	It("satisfies AtLeast reflexively and upward", func() {
		Expect(auth.RoleManager.AtLeast(auth.RoleManager)).To(BeTrue())
		Expect(auth.RoleAdmin.AtLeast(auth.RoleMember)).To(BeTrue())
		Expect(auth.RoleMember.AtLeast(auth.RoleManager)).To(BeFalse())
	})
})

var _ = Describe("RequireRole", func() {
	member := &auth.Actor{ID: 10, OrgID: 1, Role: auth.RoleMember}
	manager := &auth.Actor{ID: 11, OrgID: 1, Role: auth.RoleManager}
	admin := &auth.Actor{ID: 12, OrgID: 1, Role: auth.RoleAdmin}

	It("rejects a missing actor as unauthenticated", func() {
		err := auth.RequireRole(nil, auth.RoleMember, 1)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeUnauthorized))
	})

	It("reports a cross-org actor as not found, not forbidden", func() {
		err := auth.RequireRole(member, auth.RoleMember, 2)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
	})

	It("rejects a member where a manager is required", func() {
		Expect(auth.RequireRole(member, auth.RoleManager, 1)).To(MatchError(internal.ErrInsufficientRole))
	})

	It("accepts exact and higher ranks", func() {
		Expect(auth.RequireRole(manager, auth.RoleManager, 1)).To(Succeed())
		Expect(auth.RequireRole(admin, auth.RoleManager, 1)).To(Succeed())
	})
})

var _ = Describe("RequireOwnershipOrManager", func() {
	owner := &auth.Actor{ID: 10, OrgID: 1, Role: auth.RoleMember}
	otherMember := &auth.Actor{ID: 20, OrgID: 1, Role: auth.RoleMember}
	manager := &auth.Actor{ID: 11, OrgID: 1, Role: auth.RoleManager}
	foreignManager := &auth.Actor{ID: 30, OrgID: 2, Role: auth.RoleManager}

	It("lets the author through regardless of rank", func() {
		Expect(auth.RequireOwnershipOrManager(owner, 10, 1)).To(Succeed())
	})

	It("lets a same-org manager through for another author's resource", func() {
		Expect(auth.RequireOwnershipOrManager(manager, 10, 1)).To(Succeed())
	})

	It("rejects another member of the same org", func() {
		Expect(auth.RequireOwnershipOrManager(otherMember, 10, 1)).To(MatchError(internal.ErrInsufficientRole))
	})

	It("hides the resource from a manager of another org", func() {
		err := auth.RequireOwnershipOrManager(foreignManager, 10, 1)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
	})
})

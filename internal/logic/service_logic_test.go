package logic

import (
	"testing"

	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedService(t *testing.T, services *ServiceLogic, orgId, serviceId string) {
	t.Helper()

	require.NoError(t, services.UpsertService(&model.Service{
		OrgId:     orgId,
		ServiceId: serviceId,
		HashUri:   "ipfs://QmService",
	}))
	require.NoError(t, services.ReplaceMetadata(&model.ServiceMetadata{
		OrgId:       orgId,
		ServiceId:   serviceId,
		DisplayName: "Example Service",
	}))
	require.NoError(t, services.ReplaceTags(orgId, serviceId, []model.ServiceTag{
		{OrgId: orgId, ServiceId: serviceId, TagName: "vision"},
		{OrgId: orgId, ServiceId: serviceId, TagName: "nlp"},
	}))
	require.NoError(t, services.ReplaceEndpoints(orgId, serviceId, []model.ServiceEndpoint{
		{OrgId: orgId, ServiceId: serviceId, GroupId: "g1", Endpoint: "https://node1.example.com:8089", IsAvailable: true},
	}))
}

func TestServiceLogic_ReplaceTags(t *testing.T) {
	services := NewServiceLogic(newTestDB(t))
	seedService(t, services, "org1", "svc1")

	// 整体替换后只剩新快照的标签
	require.NoError(t, services.ReplaceTags("org1", "svc1", []model.ServiceTag{
		{OrgId: "org1", ServiceId: "svc1", TagName: "speech"},
	}))

	tags, err := services.GetTags("org1", "svc1")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "speech", tags[0].TagName)
}

func TestServiceLogic_DeleteServiceRemovesDependents(t *testing.T) {
	db := newTestDB(t)
	services := NewServiceLogic(db)
	seedService(t, services, "org1", "svc1")
	seedService(t, services, "org1", "svc2")

	require.NoError(t, services.DeleteService("org1", "svc1"))

	svc, err := services.GetService("org1", "svc1")
	require.NoError(t, err)
	assert.Nil(t, svc)

	meta, err := services.GetServiceMetadata("org1", "svc1")
	require.NoError(t, err)
	assert.Nil(t, meta)

	tags, err := services.GetTags("org1", "svc1")
	require.NoError(t, err)
	assert.Empty(t, tags)

	// 其他服务不受影响
	svc, err = services.GetService("org1", "svc2")
	require.NoError(t, err)
	assert.NotNil(t, svc)

	count, err := services.CountByOrg("org1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 再次删除是无操作
	require.NoError(t, services.DeleteService("org1", "svc1"))
}

func TestServiceLogic_UpsertPreservesCuration(t *testing.T) {
	services := NewServiceLogic(newTestDB(t))
	seedService(t, services, "org1", "svc1")

	require.NoError(t, services.SetCurated("org1", "svc1", true))

	// 元数据变更不会清掉curation标记
	require.NoError(t, services.UpsertService(&model.Service{
		OrgId:     "org1",
		ServiceId: "svc1",
		HashUri:   "ipfs://QmServiceV2",
	}))

	svc, err := services.GetService("org1", "svc1")
	require.NoError(t, err)
	require.NotNil(t, svc)
	assert.True(t, svc.IsCurated)
	assert.Equal(t, "ipfs://QmServiceV2", svc.HashUri)
}

func TestOrgLogic_UpsertPreservesCuration(t *testing.T) {
	orgs := NewOrgLogic(newTestDB(t))

	require.NoError(t, orgs.UpsertOrganization(&model.Organization{
		OrgId:            "org1",
		OrganizationName: "Example Org",
	}))
	require.NoError(t, orgs.SetCurated("org1", true))

	require.NoError(t, orgs.UpsertOrganization(&model.Organization{
		OrgId:            "org1",
		OrganizationName: "Example Org Renamed",
	}))

	org, err := orgs.GetOrganization("org1")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.True(t, org.IsCurated)
	assert.Equal(t, "Example Org Renamed", org.OrganizationName)
}

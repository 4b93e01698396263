package driver

const (
	SaveEntityNodeQuery = `
		MERGE (n:Entity {id: $id, group_id: $group_id})
		SET n.label = $label,
			n.type = $type,
			n.properties = $properties,
			n.x = $x,
			n.y = $y,
			n.exported_at = $exported_at
		RETURN n.id AS id
	`

	SaveRelationQuery = `
		MATCH (source:Entity {id: $source_id, group_id: $group_id})
		MATCH (target:Entity {id: $target_id, group_id: $group_id})
		MERGE (source)-[e:RELATES_TO {id: $id}]->(target)
		SET e.type = $type,
			e.group_id = $group_id,
			e.weight = $weight,
			e.inferred = $inferred,
			e.inference_method = $inference_method,
			e.confidence = $confidence,
			e.properties = $properties
		RETURN e.id AS id
	`

	SetNodeAnalysisQuery = `
		MATCH (n:Entity {id: $id, group_id: $group_id})
		SET n.cluster = $cluster,
			n.anomalous = $anomalous,
			n.anomaly_score = $anomaly_score
		RETURN n.id AS id
	`

	SaveCommunityQuery = `
		MERGE (c:Community {id: $id, group_id: $group_id})
		SET c.size = $size,
			c.exported_at = $exported_at
		RETURN c.id AS id
	`

	SaveCommunityMemberQuery = `
		MATCH (c:Community {id: $community_id, group_id: $group_id})
		MATCH (n:Entity {id: $entity_id, group_id: $group_id})
		MERGE (c)-[r:HAS_MEMBER]->(n)
		RETURN c.id AS id
	`

	ClearGroupQuery = `
		MATCH (n {group_id: $group_id})
		DETACH DELETE n
	`

	GetGroupNodesQuery = `
		MATCH (n:Entity {group_id: $group_id})
		RETURN n.id AS id, n.label AS label, n.type AS type, n.properties AS properties
		ORDER BY n.id
	`

	GetGroupEdgesQuery = `
		MATCH (s:Entity {group_id: $group_id})-[e:RELATES_TO]->(t:Entity {group_id: $group_id})
		RETURN e.id AS id, s.id AS source_id, t.id AS target_id, e.type AS type,
			e.weight AS weight, e.inferred AS inferred, e.inference_method AS inference_method,
			e.confidence AS confidence, e.properties AS properties
		ORDER BY e.id
	`
)

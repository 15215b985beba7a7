package store

// WithCondition adds a field = value equality condition.
// Domain packages use this to define their own typed options.
func WithCondition(field string, value any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: value})
		return q
	}
}

// WithConditionOp adds a field <op> value condition (e.g. ">", "<=").
func WithConditionOp(field, operator string, value any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, operator: operator, value: value})
		return q
	}
}

// WithConditionIn adds a field IN (values) condition.
func WithConditionIn(field string, values any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, value: values, in: true})
		return q
	}
}

// WithID filters by the "id" column.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithIDAfter filters rows whose "id" is strictly greater than id.
// Used for stable keyset pagination over ascending ids.
func WithIDAfter(id int64) Option {
	return WithConditionOp("id", ">", id)
}

// WithOwnerID filters by the "owner_id" column.
func WithOwnerID(ownerID string) Option {
	return WithCondition("owner_id", ownerID)
}

// WithQueryEntityID filters by the "query_entity_id" column.
func WithQueryEntityID(id int64) Option {
	return WithCondition("query_entity_id", id)
}

// WithContentHash filters by the "content_hash" column.
func WithContentHash(hash string) Option {
	return WithCondition("content_hash", hash)
}

// WithLimit sets the maximum number of results.
func WithLimit(limit int) Option {
	return func(q Query) Query {
		q.limit = limit
		return q
	}
}

// WithOffset sets the number of results to skip.
func WithOffset(offset int) Option {
	return func(q Query) Query {
		q.offset = offset
		return q
	}
}

// WithOrderAsc orders results by field ascending.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, ascending: true})
		return q
	}
}

// WithOrderDesc orders results by field descending.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field})
		return q
	}
}

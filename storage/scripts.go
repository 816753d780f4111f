package storage

// The Lua scripts below are the server-side implementation of
// spec.md §4.2's reward arithmetic and of every other Backend method
// that must be atomic (spec.md §5). Each script takes no KEYS — every
// key name is derived inside the script from the experiment/arm names
// passed as ARGV, matching spec.md §4.4's "bandit:experiment:{name}:*"
// layout. This trades Redis Cluster key-slot affinity (which would
// require callers to pass pre-computed, hash-tagged KEYS) for a much
// simpler call surface; a cluster deployment should shard by
// experiment name at the client level instead.
//
// recordRewardScript and bulkRewardScript MUST stay arithmetically
// identical to applySingleReward/applyBulkReward in reward.go — that
// identity is what spec.md's P2 (backend equivalence) depends on.

const initExperimentScript = `
local name = ARGV[1]
local paramsKey = "bandit:experiment:"..name..":params"
if redis.call("EXISTS", paramsKey) == 1 then
  return 0
end
redis.call("HSET", paramsKey,
  "algo", ARGV[2],
  "maximize", ARGV[3],
  "reward_lower_bound", ARGV[4],
  "epsilon", ARGV[5],
  "exploration_mult", ARGV[6],
  "starting_temperature", ARGV[7],
  "temp_decay_per_step", ARGV[8],
  "min_temperature", ARGV[9])
redis.call("SET", "bandit:experiment:"..name..":max-reward", "1")
redis.call("SET", "bandit:experiment:"..name..":choose-count", "0")
for i = 10, #ARGV do
  local arm = ARGV[i]
  redis.call("SADD", "bandit:experiment:"..name..":arm-names", arm)
  redis.call("HSET", "bandit:experiment:"..name..":arm-states:"..arm,
    "n", "1", "mean-reward", "0", "deleted", "0")
end
return 1
`

const createArmScript = `
local name, arm = ARGV[1], ARGV[2]
redis.call("SADD", "bandit:experiment:"..name..":arm-names", arm)
local key = "bandit:experiment:"..name..":arm-states:"..arm
if redis.call("EXISTS", key) == 1 then
  redis.call("HSET", key, "deleted", "0")
else
  redis.call("HSET", key, "n", "1", "mean-reward", "0", "deleted", "0")
end
return 1
`

const softDeleteArmScript = `
local name, arm = ARGV[1], ARGV[2]
local key = "bandit:experiment:"..name..":arm-states:"..arm
if redis.call("EXISTS", key) == 1 then
  redis.call("HSET", key, "deleted", "1")
end
return 1
`

const hardDeleteArmScript = `
local name, arm = ARGV[1], ARGV[2]
redis.call("SREM", "bandit:experiment:"..name..":arm-names", arm)
redis.call("DEL", "bandit:experiment:"..name..":arm-states:"..arm)
return 1
`

const recordRewardScript = `
local name, arm = ARGV[1], ARGV[2]
local lowerBound = tonumber(ARGV[3])
local reward = tonumber(ARGV[4])
local stateKey = "bandit:experiment:"..name..":arm-states:"..arm

if redis.call("EXISTS", stateKey) == 0 then return 0 end
if redis.call("HGET", stateKey, "deleted") == "1" then return 0 end

local n = tonumber(redis.call("HGET", stateKey, "n"))
local mean = tonumber(redis.call("HGET", stateKey, "mean-reward"))
local maxKey = "bandit:experiment:"..name..":max-reward"
local maxReward = tonumber(redis.call("GET", maxKey) or "1")

local r = reward
if r < lowerBound then r = lowerBound end
local newMax = maxReward
if r > newMax then newMax = r end

local s
if newMax == lowerBound then
  s = lowerBound
else
  s = (r - lowerBound) / (newMax - lowerBound)
end

local delta = s - mean
local newN = n + 1
local newMean = mean + delta / newN

redis.call("HSET", stateKey, "n", tostring(newN), "mean-reward", string.format("%.17g", newMean))
redis.call("SET", maxKey, string.format("%.17g", newMax))
return 1
`

const bulkRewardScript = `
local name, arm = ARGV[1], ARGV[2]
local lowerBound = tonumber(ARGV[3])
local muIn = tonumber(ARGV[4])
local maxIn = tonumber(ARGV[5])
local count = tonumber(ARGV[6])
local stateKey = "bandit:experiment:"..name..":arm-states:"..arm

if redis.call("EXISTS", stateKey) == 0 then return 0 end
if redis.call("HGET", stateKey, "deleted") == "1" then return 0 end

local n = tonumber(redis.call("HGET", stateKey, "n"))
local mean = tonumber(redis.call("HGET", stateKey, "mean-reward"))
local maxKey = "bandit:experiment:"..name..":max-reward"
local maxReward = tonumber(redis.call("GET", maxKey) or "1")

local mu = muIn
if mu < lowerBound then mu = lowerBound end
local x = maxIn
if x < lowerBound then x = lowerBound end
local newMax = maxReward
if x > newMax then newMax = x end

local s
if newMax == lowerBound then
  s = lowerBound
else
  s = (mu - lowerBound) / (newMax - lowerBound)
end

local delta = s - mean
local newN = n + count
local newMean = mean + delta * (count / newN)

redis.call("HSET", stateKey, "n", tostring(newN), "mean-reward", string.format("%.17g", newMean))
redis.call("SET", maxKey, string.format("%.17g", newMax))
return 1
`

const getArmStatesScript = `
local name = ARGV[1]
local arms = redis.call("SMEMBERS", "bandit:experiment:"..name..":arm-names")
local out = {}
for _, arm in ipairs(arms) do
  local key = "bandit:experiment:"..name..":arm-states:"..arm
  local n = redis.call("HGET", key, "n")
  if n then
    local mean = redis.call("HGET", key, "mean-reward")
    local deleted = redis.call("HGET", key, "deleted")
    table.insert(out, arm)
    table.insert(out, n)
    table.insert(out, mean)
    table.insert(out, deleted)
  end
end
return out
`

const resetScript = `
local keys = redis.call("KEYS", "bandit:experiment:*")
for _, k in ipairs(keys) do
  redis.call("DEL", k)
end
return #keys
`
